package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/hotelbrasileiro/hotel-reservation/internal/config"
    "github.com/hotelbrasileiro/hotel-reservation/internal/database"
    "github.com/hotelbrasileiro/hotel-reservation/internal/gateway"
    "github.com/hotelbrasileiro/hotel-reservation/internal/handler"
    "github.com/hotelbrasileiro/hotel-reservation/internal/mailer"
    "github.com/hotelbrasileiro/hotel-reservation/internal/middleware"
    "github.com/hotelbrasileiro/hotel-reservation/internal/payflow"
    "github.com/hotelbrasileiro/hotel-reservation/internal/queue"
    "github.com/hotelbrasileiro/hotel-reservation/internal/repository"
    "github.com/hotelbrasileiro/hotel-reservation/internal/router"
    queuepublisher "github.com/hotelbrasileiro/hotel-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the rate limiter and the room-catalogue cache.  A nil
    // client just disables both.
    rdb := config.NewRedisClient()

    reservations := repository.NewReservationRepo(db)
    rooms := repository.NewRoomRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    pagbank := gateway.New(gateway.Config{
        BaseURL:         cfg.PagBankURL,
        Token:           cfg.PagBankToken,
        NotificationURL: cfg.NotificationURL,
        Timeout:         cfg.PagBankTimeout,
    })

    flow := payflow.New(reservations, pagbank, queuepublisher.PublishPaymentStatusChanged, cfg.RedirectWebURL, cfg.RedirectAppURL)

    mail, err := mailer.NewFromConfig(cfg)
    if err != nil {
        // Auth still works without email; recovery codes just cannot be sent.
        log.Printf("mailer disabled: %v", err)
    }

    e := echo.New()
    e.HideBanner = true

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterCheckout(e, handler.NewCheckoutHandler(flow, cfg.JWTSecret), limiter)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, reservations, mail), cfg.JWTSecret, limiter)
    router.RegisterPublic(e, &handler.RoomHandler{Rooms: rooms}, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    // Drains payment.status-changed into logs/payments.log; reconnects on
    // broker failures.
    go func() {
        if err := queue.StartPaymentConsumer(); err != nil {
            log.Printf("payment consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
