package utils

import (
	"os"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/levisilvaaa/dailydose/config"
	"github.com/levisilvaaa/dailydose/models"
)

// StartAvatarCleaner schedules a periodic sweep of avatar uploads that were
// written to storage but never claimed as a profile picture. Best-effort: a
// failed file removal still drops the row so the sweep cannot wedge on one
// bad entry. Returns the scheduler so the caller can stop it on shutdown.
func StartAvatarCleaner(interval time.Duration) *gocron.Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Do(sweepUnclaimedAvatars)
	if err != nil {
		Sugar.Errorf("avatar cleaner schedule failed: %v", err)
		return s
	}
	s.StartAsync()
	return s
}

func sweepUnclaimedAvatars() {
	db := config.DB()

	var items []models.AvatarUpload
	if err := db.Where("claimed = ? AND expire_at <= ?", false, time.Now()).
		Limit(100).Find(&items).Error; err != nil {
		Sugar.Warnf("avatar cleaner query failed: %v", err)
		return
	}

	for _, it := range items {
		if it.FilePath != "" {
			_ = os.Remove(it.FilePath)
		}
		if err := db.Delete(&models.AvatarUpload{}, it.ID).Error; err != nil {
			Sugar.Warnf("avatar cleaner delete row failed: %v", err)
		}
	}
	if len(items) > 0 {
		Sugar.Infof("avatar cleaner removed %d unclaimed upload(s)", len(items))
	}
}
