package service

import (
	"fmt"
	"strings"
	"time"

	"menu-bot/internal/model"
)

const exportHeader = "user_id,username,first_name,last_name,first_seen,last_seen"

// BuildUsersCSV renders the registry as comma-separated text. Commas inside
// free-text fields are replaced with spaces instead of quoting, so a value
// containing a comma is sanitized lossily. NULL fields render as empty.
func BuildUsersCSV(users []model.User) []byte {
	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')
	for _, u := range users {
		fields := []string{
			fmt.Sprintf("%d", u.UserID),
			sanitizeField(u.Username),
			sanitizeField(u.FirstName),
			sanitizeField(u.LastName),
			strings.ReplaceAll(u.FirstSeen, ",", " "),
			strings.ReplaceAll(u.LastSeen, ",", " "),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// ExportFileName returns a timestamped name for the CSV document.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("users_%s.csv", now.UTC().Format("20060102_150405"))
}

func sanitizeField(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ReplaceAll(*s, ",", " ")
}
