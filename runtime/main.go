package main

import (
	"github.com/maahtami/study-planner-ece1778/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Study Planner API
// @version 1.0
// @description Local-first study session planner with streaks, badges and an optional cloud mirror.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.RedisService{},
		&services.FirestoreService{},

		&services.SessionService{},
		&services.GamificationService{},
		&services.ReminderService{},
		&services.PlannerService{},
		&services.BackupService{},

		&services.JWTService{},
		&services.AuthMiddleware{},
		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
