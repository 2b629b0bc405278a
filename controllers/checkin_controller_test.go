package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/levisilvaaa/dailydose/middleware"
	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-signing-secret")
	os.Setenv("DEFAULT_TIMEZONE", "America/Chicago")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// openTestDB opens a named in-memory database. TranslateError is on, exactly
// as in production: the idempotent insert path depends on unique violations
// surfacing as gorm.ErrDuplicatedKey.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Checkin{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, tz string) models.User {
	t.Helper()
	user := models.User{Email: "checkin@example.com", PasswordHash: "x", Timezone: tz}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// checkinRouter mounts the check-in endpoints behind a stub that injects the
// authenticated user the way the auth middleware does.
func checkinRouter(db *gorm.DB, userID uint) *gin.Engine {
	ctrl := NewCheckinController(db)
	r := gin.New()
	r.Use(func(ctx *gin.Context) { ctx.Set(middleware.ContextUserIDKey, userID) })
	r.POST("/checkins", ctrl.DailyCheckin)
	r.GET("/checkins/today", ctrl.TodayStatus)
	r.GET("/checkins", ctrl.ListCheckins)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target string) (int, utils.JSONResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func dataField(t *testing.T, resp utils.JSONResponse) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", resp.Data)
	return data
}

func TestDailyCheckinIdempotent(t *testing.T) {
	db := openTestDB(t, "checkin_idempotent")
	user := newTestUser(t, db, "UTC")
	r := checkinRouter(db, user.ID)

	status, resp := doJSON(t, r, http.MethodPost, "/checkins")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 0, resp.Code)
	first := dataField(t, resp)
	assert.Equal(t, false, first["already_checked_in"])
	firstDate := first["checkin_date"]

	// Second submit for the same day: success envelope, conflict flagged,
	// still exactly one row.
	status, resp = doJSON(t, r, http.MethodPost, "/checkins")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 0, resp.Code)
	second := dataField(t, resp)
	assert.Equal(t, true, second["already_checked_in"])
	assert.Equal(t, firstDate, second["checkin_date"])

	var count int64
	require.NoError(t, db.Model(&models.Checkin{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDailyCheckinIsPerUser(t *testing.T) {
	db := openTestDB(t, "checkin_per_user")
	alice := newTestUser(t, db, "UTC")
	bob := models.User{Email: "bob@example.com", PasswordHash: "x", Timezone: "UTC"}
	require.NoError(t, db.Create(&bob).Error)

	_, resp := doJSON(t, checkinRouter(db, alice.ID), http.MethodPost, "/checkins")
	assert.Equal(t, false, dataField(t, resp)["already_checked_in"])

	// Same day, different user: not a conflict.
	_, resp = doJSON(t, checkinRouter(db, bob.ID), http.MethodPost, "/checkins")
	assert.Equal(t, false, dataField(t, resp)["already_checked_in"])
}

func TestTodayStatusReflectsCheckin(t *testing.T) {
	db := openTestDB(t, "checkin_today")
	user := newTestUser(t, db, "UTC")
	r := checkinRouter(db, user.ID)

	status, resp := doJSON(t, r, http.MethodGet, "/checkins/today")
	require.Equal(t, http.StatusOK, status)
	before := dataField(t, resp)
	assert.Equal(t, false, before["checked_in"])
	assert.Contains(t, before, "millis_until_midnight")

	_, _ = doJSON(t, r, http.MethodPost, "/checkins")

	_, resp = doJSON(t, r, http.MethodGet, "/checkins/today")
	after := dataField(t, resp)
	assert.Equal(t, true, after["checked_in"])
	assert.Equal(t, before["date"], after["date"])
}

func TestListCheckinsValidatesRange(t *testing.T) {
	db := openTestDB(t, "checkin_list")
	user := newTestUser(t, db, "UTC")
	r := checkinRouter(db, user.ID)

	status, resp := doJSON(t, r, http.MethodGet, "/checkins?from=bogus&to=2024-03-31")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40020, resp.Code)

	status, resp = doJSON(t, r, http.MethodGet, "/checkins?from=2024-03-31&to=2024-03-01")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40022, resp.Code)

	_, _ = doJSON(t, r, http.MethodPost, "/checkins")
	status, resp = doJSON(t, r, http.MethodGet, "/checkins?from=1970-01-01&to=9999-12-31")
	require.Equal(t, http.StatusOK, status)
	list, ok := dataField(t, resp)["checkins"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestRequestLocationFallbackChain(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	// An unloadable stored zone falls through to the configured default,
	// never bare UTC.
	loc := requestLocation(ctx, &models.User{Timezone: "Not/AZone"})
	assert.Equal(t, "America/Chicago", loc.String())

	loc = requestLocation(ctx, &models.User{Timezone: "Asia/Tokyo"})
	assert.Equal(t, "Asia/Tokyo", loc.String())

	// The request header wins over everything stored.
	ctx.Request.Header.Set("X-Timezone", "Europe/Berlin")
	loc = requestLocation(ctx, &models.User{Timezone: "Asia/Tokyo"})
	assert.Equal(t, "Europe/Berlin", loc.String())
}
