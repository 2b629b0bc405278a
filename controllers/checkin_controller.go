package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/levisilvaaa/dailydose/localdate"
	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/utils"
)

// CheckinController handles the daily check-in endpoints. A check-in is
// write-once per (user, local calendar day); the unique index on the store is
// the source of truth and the insert path treats its conflict as the benign
// already-checked-in state.
type CheckinController struct {
	db *gorm.DB
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{db: db}
}

// snapshotCachePrefix matches the keys written by the stats controller.
const snapshotCachePrefix = "stats:snapshot:"

// DailyCheckin records today's check-in. Idempotent: a duplicate insert for
// the same local day resolves to the existing record without an error
// response. Any other store failure is surfaced as retryable and no
// checked-in state is assumed.
func (c *CheckinController) DailyCheckin(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	loc := requestLocation(ctx, &user)
	today := localdate.Today(loc)

	record := models.Checkin{
		UserID:      userID,
		CheckinDate: today.Key(),
		CreatedAt:   time.Now(),
	}

	err := c.db.Create(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		utils.Sugar.Errorf("check-in insert failed for user %d date %s: %v", userID, today.Key(), err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to record check-in, please retry")
		return
	}

	already := errors.Is(err, gorm.ErrDuplicatedKey)
	if already {
		// Fetch the existing row so the response carries the original
		// check-in time.
		if ferr := c.db.Where("user_id = ? AND checkin_date = ?", userID, today.Key()).
			First(&record).Error; ferr != nil {
			utils.Sugar.Warnf("check-in conflict but row not found for user %d date %s: %v", userID, today.Key(), ferr)
		}
	}

	// The store has confirmed (insert or conflict); only now may cached
	// day-scoped state change.
	utils.InvalidateByPrefix(snapshotCachePrefix + itoa(userID) + ":")

	// Remember the zone the client checked in from for later fallbacks.
	if tz := ctx.GetHeader(timezoneHeader); tz != "" && tz != user.Timezone {
		if _, lerr := time.LoadLocation(tz); lerr == nil {
			_ = c.db.Model(&models.User{}).Where("id = ?", userID).Update("timezone", tz).Error
		}
	}

	utils.Success(ctx, gin.H{
		"checkin_date":       record.CheckinDate,
		"checked_in_at":      record.CreatedAt,
		"already_checked_in": already,
	})
}

// TodayStatus is the zero-or-one existence check the client re-derives its
// "checked in today" flag from on every cold load and at each midnight
// boundary. The countdown to the next local midnight rides along so the
// client can arm its reset timer from the same canonical now.
func (c *CheckinController) TodayStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	loc := requestLocation(ctx, &user)
	now := time.Now()
	today := localdate.FromTime(now, loc)

	var record models.Checkin
	err := c.db.Where("user_id = ? AND checkin_date = ?", userID, today.Key()).First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Sugar.Errorf("today status query failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load today's status")
		return
	}

	resp := gin.H{
		"date":                  today.Key(),
		"checked_in":            err == nil,
		"millis_until_midnight": localdate.MillisUntilNextMidnight(now, loc),
	}
	if err == nil {
		resp["checked_in_at"] = record.CreatedAt
	}
	utils.Success(ctx, resp)
}

// ListCheckins returns the user's check-in rows with date in [from, to],
// ascending. Used by the month view; bounds are plain date keys.
func (c *CheckinController) ListCheckins(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	from, err := localdate.Parse(ctx.Query("from"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid or missing 'from' date (YYYY-MM-DD)")
		return
	}
	to, err := localdate.Parse(ctx.Query("to"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid or missing 'to' date (YYYY-MM-DD)")
		return
	}
	if to.Before(from) {
		utils.Error(ctx, http.StatusBadRequest, 40022, "'to' must not precede 'from'")
		return
	}

	var records []models.Checkin
	if err := c.db.Where("user_id = ? AND checkin_date >= ? AND checkin_date <= ?",
		userID, from.Key(), to.Key()).
		Order("checkin_date ASC").
		Find(&records).Error; err != nil {
		utils.Sugar.Errorf("check-in range query failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"from":     from.Key(),
		"to":       to.Key(),
		"checkins": records,
	})
}
