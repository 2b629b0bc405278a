package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/levisilvaaa/dailydose/config"
	"github.com/levisilvaaa/dailydose/localdate"
	"github.com/levisilvaaa/dailydose/middleware"
	"github.com/levisilvaaa/dailydose/models"
)

// timezoneHeader carries the client's IANA zone on any request. The canonical
// local day is always derived from the caller's zone, never from a
// server-side offset.
const timezoneHeader = "X-Timezone"

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// requestLocation resolves the timezone for one computation pass.
// Precedence: explicit request zone, then the zone stored on the profile,
// then the configured default. Every candidate that fails to load falls
// through to the next, so a corrupt stored zone still lands on the
// configured default rather than bare UTC.
func requestLocation(ctx *gin.Context, user *models.User) *time.Location {
	cfg := config.Get()
	name := strings.TrimSpace(ctx.GetHeader(timezoneHeader))
	if name == "" {
		name = strings.TrimSpace(ctx.Query("tz"))
	}
	stored := ""
	if user != nil {
		stored = user.Timezone
	}
	return localdate.LoadLocation(name, stored, cfg.DefaultTimezone)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// avatarPublicURL resolves a stored avatar object path to its retrievable
// URL. Empty in, empty out.
func avatarPublicURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
