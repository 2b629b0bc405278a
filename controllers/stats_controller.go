package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/levisilvaaa/dailydose/adherence"
	"github.com/levisilvaaa/dailydose/localdate"
	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/utils"
)

// StatsController exposes the adherence statistics. All date math happens in
// the pure engine over already-fetched rows; this layer only fetches, caches
// and logs.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetSnapshot returns the all-time adherence snapshot for the authenticated
// user. Cached per (user, local day) so the cache can never span a midnight
// boundary: the TTL is bounded by the countdown to the next local midnight.
func (s *StatsController) GetSnapshot(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	loc := requestLocation(ctx, &user)
	now := time.Now()
	today := localdate.FromTime(now, loc)

	cacheKey := snapshotCachePrefix + itoa(userID) + ":" + today.Key()
	if b, hit := utils.CacheGetBytes(cacheKey); hit {
		var cached adherence.Snapshot
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	set, ok := s.loadDaySet(ctx, userID)
	if !ok {
		return
	}

	snapshot := adherence.BuildSnapshot(set, today)

	ttl := time.Duration(localdate.MillisUntilNextMidnight(now, loc)) * time.Millisecond
	if ttl > 0 {
		utils.CacheSetJSON(cacheKey, snapshot, ttl)
	}

	utils.Success(ctx, snapshot)
}

// GetMonth returns the ordered day-status list and the aggregate counters for
// one calendar month. Computed fresh on every call; the month view is cheap
// and never persisted.
func (s *StatsController) GetMonth(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	year, err := strconv.Atoi(ctx.Query("year"))
	if err != nil || year < 1970 || year > 9999 {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid or missing 'year'")
		return
	}
	monthNum, err := strconv.Atoi(ctx.Query("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid or missing 'month' (1-12)")
		return
	}
	month := time.Month(monthNum)

	loc := requestLocation(ctx, &user)
	today := localdate.Today(loc)

	// The month view only needs that month's rows, but the engine tolerates
	// the full set; fetch just the window to keep the query indexed.
	first := localdate.Date{Year: year, Month: month, Day: 1}
	last := first.EndOfMonth()

	var keys []string
	if err := s.db.Model(&models.Checkin{}).
		Where("user_id = ? AND checkin_date >= ? AND checkin_date <= ?", userID, first.Key(), last.Key()).
		Order("checkin_date ASC").
		Pluck("checkin_date", &keys).Error; err != nil {
		utils.Sugar.Errorf("month stats query failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load month data")
		return
	}

	set, rejected := adherence.NewDaySet(keys)
	if len(rejected) > 0 {
		utils.Sugar.Warnf("skipping %d malformed check-in date(s) for user %d: %v", len(rejected), userID, rejected)
	}

	utils.Success(ctx, gin.H{
		"year":    year,
		"month":   monthNum,
		"days":    adherence.MonthStatuses(set, today, year, month),
		"summary": adherence.SummarizeMonth(set, today, year, month),
	})
}

// loadDaySet fetches every check-in date key for the user and parses it into
// the engine's set form. Malformed rows are a data integrity problem: logged
// and excluded, never fatal. Returns ok=false only when the query itself
// failed and a response has been written.
func (s *StatsController) loadDaySet(ctx *gin.Context, userID uint) (adherence.DaySet, bool) {
	var keys []string
	if err := s.db.Model(&models.Checkin{}).
		Where("user_id = ?", userID).
		Order("checkin_date DESC").
		Pluck("checkin_date", &keys).Error; err != nil {
		utils.Sugar.Errorf("snapshot query failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load check-in history")
		return nil, false
	}

	set, rejected := adherence.NewDaySet(keys)
	if len(rejected) > 0 {
		utils.Sugar.Warnf("skipping %d malformed check-in date(s) for user %d: %v", len(rejected), userID, rejected)
	}
	return set, true
}
