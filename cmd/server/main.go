package main // Entry point: explicit wiring of every dependency, no globals

import (
    "context"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"

    "github.com/bhevents/souq-stall-booking/internal/availability"
    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/config"
    "github.com/bhevents/souq-stall-booking/internal/database"
    "github.com/bhevents/souq-stall-booking/internal/handler"
    "github.com/bhevents/souq-stall-booking/internal/live"
    "github.com/bhevents/souq-stall-booking/internal/queue"
    "github.com/bhevents/souq-stall-booking/internal/repository"
    "github.com/bhevents/souq-stall-booking/internal/router"
    "github.com/bhevents/souq-stall-booking/internal/service"
    "github.com/bhevents/souq-stall-booking/internal/session"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments use the environment
    cfg := config.Load()

    zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
    if cfg.Env == "dev" {
        log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
    }

    cat, err := catalog.Load()
    if err != nil {
        log.Fatal().Err(err).Msg("load stall catalog")
    }
    for _, w := range cat.Warnings() {
        log.Warn().Msg(w)
    }

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatal().Err(err).Msg("open database")
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Warn().Msg("redis unavailable: live updates and rate limiting disabled")
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    repo := repository.NewStallRepo(db)
    channel := live.NewChannel(rdb, log.Logger)
    merge := availability.NewService(cat, repo, log.Logger)

    // One long-lived view per layout: initial load, then live patches plus
    // the reconcile poll.
    views := make(map[catalog.Layout]*availability.View)
    for _, l := range cat.Layouts() {
        view, err := availability.NewView(ctx, merge, l.ID, log.Logger)
        if err != nil {
            log.Fatal().Err(err).Str("layout", string(l.ID)).Msg("build layout view")
        }
        views[l.ID] = view
        go view.Run(ctx, channel, cfg.ReconcileInterval)
    }

    sessions := session.NewManager(30 * time.Minute)
    go sessions.Run(ctx, 5*time.Minute)
    go queue.StartBookedConsumer()

    booking := service.NewBookingService(cat, repo, channel, cfg.WhatsAppNumber, log.Logger)

    e := echo.New()
    e.HideBanner = true
    router.Register(e, router.Handlers{
        Stalls:  handler.NewStallsHandler(cat, views),
        Booking: handler.NewBookingHandler(sessions, booking, views),
        Admin:   handler.NewAdminHandler(cat, repo, channel),
        Auth:    handler.NewAuthHandler(cfg.JWTSecret, cfg.AdminPassHash, cfg.SessionTTLMin, cfg.Env != "dev"),
    }, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

    addr := ":" + cfg.Port
    log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
    if err := e.Start(addr); err != nil {
        log.Fatal().Err(err).Msg("server stopped")
    }
}
