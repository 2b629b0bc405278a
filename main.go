package main

import (
	"time"

	"github.com/levisilvaaa/dailydose/config"
	"github.com/levisilvaaa/dailydose/controllers"
	"github.com/levisilvaaa/dailydose/localdate"
	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/routes"
	"github.com/levisilvaaa/dailydose/scheduler"
	"github.com/levisilvaaa/dailydose/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Checkin{}, &models.Product{}, &models.AvatarUpload{})

	if err := controllers.SeedProducts(db); err != nil {
		utils.Sugar.Warnf("product seed failed: %v", err)
	}

	r := routes.SetupRouter(db)

	// Sweep avatar files that were uploaded but never claimed.
	cleaner := utils.StartAvatarCleaner(15 * time.Minute)
	defer cleaner.Stop()

	// Day-keyed snapshot caches expire on their own TTL, but the rollover
	// task drops them eagerly at the server-zone midnight so the first
	// request of a new day never sees yesterday's numbers.
	rollover := scheduler.NewMidnightTask(localdate.LoadLocation(cfg.DefaultTimezone, "UTC"), func(day localdate.Date) {
		utils.InvalidateByPrefix("stats:snapshot:")
		utils.Sugar.Infof("midnight rollover: day is now %s", day.Key())
	})
	rollover.Start()
	defer rollover.Stop()

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
