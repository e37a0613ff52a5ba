package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"menu-bot/internal/model"
)

// UserRepository is the user registry. It keeps only the DSN: every
// operation opens and closes its own connection (see openDB).
type UserRepository struct {
	dsn string
}

func NewUserRepository(dsn string) (*UserRepository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("registry dsn is empty")
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}
	r := &UserRepository{dsn: dsn}
	if err := r.migrate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *UserRepository) migrate() error {
	db, closeDB, err := openDB(r.dsn)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// Upsert records a contact from a Telegram user. On first contact it
// inserts a row with first_seen = last_seen = now; on every later contact
// it refreshes the profile fields and last_seen, leaving first_seen alone.
// Empty profile strings are stored as NULL.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, firstName, lastName string, now time.Time) error {
	db, closeDB, err := openDB(r.dsn)
	if err != nil {
		return err
	}
	defer closeDB()
	db = db.WithContext(ctx)

	stamp := now.UTC().Format(time.RFC3339)

	var user model.User
	err = db.Where("user_id = ?", userID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"username":   nullable(username),
			"first_name": nullable(firstName),
			"last_name":  nullable(lastName),
			"last_seen":  stamp,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			UserID:    userID,
			Username:  nullable(username),
			FirstName: nullable(firstName),
			LastName:  nullable(lastName),
			FirstSeen: stamp,
			LastSeen:  stamp,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find user: %w", err)
	}
}

// Count returns the number of distinct users ever seen.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	db, closeDB, err := openDB(r.dsn)
	if err != nil {
		return 0, err
	}
	defer closeDB()

	var count int64
	if err := db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// ListRecent returns at most limit users ordered by last_seen descending.
// Ties fall back to SQLite's default order, which is not guaranteed stable.
func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	db, closeDB, err := openDB(r.dsn)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	var users []model.User
	if err := db.WithContext(ctx).Order("last_seen DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	return users, nil
}

// ListAll returns every user in unspecified order, for export.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	db, closeDB, err := openDB(r.dsn)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	var users []model.User
	if err := db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
