// sbbs/utils/system.go
package utils

import (
	"time"
)

// GetSQLTime returns the current time in UTC for database storage.
func GetSQLTime() time.Time {
	return time.Now().UTC()
}
