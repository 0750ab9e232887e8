package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cineforum/club-api/internal/bootstrap"
	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/database"
	"github.com/cineforum/club-api/internal/handler"
	"github.com/cineforum/club-api/internal/queue"
	"github.com/cineforum/club-api/internal/repository"
	"github.com/cineforum/club-api/internal/router"
	"github.com/cineforum/club-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.ApplySchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	members := repository.NewMemberRepo(db)
	admins := repository.NewAdminRepo(db)
	films := repository.NewFilmRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	proposals := repository.NewProposalRepo(db)

	if err := bootstrap.EnsureDefaultAdmin(ctx, admins, cfg.AdminUsername, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; login throttle and film cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, cfg, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, admins, members),
		Members:    handler.NewMemberHandler(cfg, members),
		Films:      handler.NewFilmHandler(cfg, films, attendance),
		Attendance: handler.NewAttendanceHandler(members, attendance, service.PublishAttendanceRecorded),
		Proposals:  handler.NewProposalHandler(proposals),
	}, rdb)

	// Scan log consumer; reconnects on its own and never stops the server.
	go func() {
		if err := queue.StartAttendanceConsumer(); err != nil {
			log.Printf("attendance consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
