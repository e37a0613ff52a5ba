package model

// User stores Telegram user metadata, one row per distinct user that has
// ever contacted the bot. Rows are never deleted.
//
// FirstSeen and LastSeen are UTC ISO-8601 strings. RFC 3339 sorts
// lexicographically, so ORDER BY last_seen works on the raw column.
type User struct {
	UserID    int64   `gorm:"column:user_id;primaryKey"`
	Username  *string `gorm:"column:username"`
	FirstName *string `gorm:"column:first_name"`
	LastName  *string `gorm:"column:last_name"`
	FirstSeen string  `gorm:"column:first_seen"`
	LastSeen  string  `gorm:"column:last_seen"`
}

func (User) TableName() string {
	return "users"
}
