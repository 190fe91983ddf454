// sbbs/config/config.go
package config

import (
	"strconv"
	"time"

	"sbbs/utils"
)

const (
	AppVersion = "0.4.1"

	// AnonymousName is stored for posts submitted without an author name
	// when anonymous posting is allowed.
	AnonymousName = "Anonymous"

	// Form limits
	MaxAuthorLen = 75
	MaxTitleLen  = 100
	MaxBodyLen   = 8000

	// Password setup tokens expire after this window.
	PasswordResetTTL = 24 * time.Hour

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "30s"
	DefaultRateLimitBurst  = 3
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"
)

// Config holds the runtime settings consumed by the services. All values
// come from the environment; see FromEnv for the variable names.
type Config struct {
	StoragePath string

	RequireLogin          bool
	AllowAnonymousPosting bool
	AllowUserBoardCreate  bool
}

// FromEnv builds a Config from SBBS_* environment variables, applying the
// documented defaults: login not required, anonymous posting allowed, user
// board creation allowed.
func FromEnv() *Config {
	return &Config{
		StoragePath:           utils.GetEnv("SBBS_STORAGE_PATH", "./.storage"),
		RequireLogin:          boolEnv("SBBS_REQUIRE_LOGIN", false),
		AllowAnonymousPosting: boolEnv("SBBS_ALLOW_ANONYMOUS", true),
		AllowUserBoardCreate:  boolEnv("SBBS_ALLOW_USER_BOARDS", true),
	}
}

func boolEnv(key string, fallback bool) bool {
	raw := utils.GetEnv(key, strconv.FormatBool(fallback))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
