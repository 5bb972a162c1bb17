package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/config"
	"github.com/sportmaps/sportmaps-server/internal/database"
	"github.com/sportmaps/sportmaps-server/internal/handler"
	"github.com/sportmaps/sportmaps-server/internal/queue"
	"github.com/sportmaps/sportmaps-server/internal/repository"
	"github.com/sportmaps/sportmaps-server/internal/router"
	queue_publisher "github.com/sportmaps/sportmaps-server/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	identities := repository.NewIdentityRepo(db)
	profiles := repository.NewProfileRepo(db)
	tokens := repository.NewTokenRepo(db)
	schools := repository.NewSchoolRepo(db)
	notifications := repository.NewNotificationRepo(db)

	publisher := queue_publisher.New("")

	// Auth events land in logs/auth.log and the notifications table.
	go func() {
		if err := queue.StartAuthEventConsumer(notifications); err != nil {
			log.Printf("auth event consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg, identities, profiles, tokens, publisher)
	profileH := handler.NewProfileHandler(profiles, publisher)
	dashH := handler.NewDashboardHandler(notifications)
	notifH := handler.NewNotificationHandler(notifications)
	adminH := handler.NewAdminHandler(identities, profiles)
	schoolH := handler.NewSchoolHandler(schools)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, profileH, cfg.JWTSecret, rdb)
	router.RegisterProtected(e, cfg.JWTSecret, profiles, dashH, notifH, adminH)
	router.RegisterPublic(e, schoolH, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
