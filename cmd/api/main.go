package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeevanrakth/rakth-store.git/internal/auth"
	"github.com/jeevanrakth/rakth-store.git/internal/config"
	"github.com/jeevanrakth/rakth-store.git/internal/httpx"
	kafkax "github.com/jeevanrakth/rakth-store.git/internal/kafka"
	"github.com/jeevanrakth/rakth-store.git/internal/postgres"
	"github.com/jeevanrakth/rakth-store.git/internal/redisx"
	"github.com/jeevanrakth/rakth-store.git/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (event order placed)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, store.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Repos & handlers
	repo := &store.Repo{DB: db}
	users := &auth.UserRepo{DB: db}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL, cfg.ServiceName)

	router := httpx.NewRouter()
	authMW := httpx.Auth(tokens)

	ah := &httpx.AuthHandler{Users: users, Tokens: tokens}
	ah.Register(router)

	ph := &httpx.ProductsHandler{Store: repo, Redis: rdb}
	ph.Register(router, authMW)

	oh := &httpx.OrdersHandler{
		Store:    repo,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}
	oh.Register(router, authMW)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
