package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/qzpost/quizbot/internal/gateway/bot"
	"github.com/qzpost/quizbot/internal/gateway/telegram"
	"github.com/qzpost/quizbot/internal/repository/ttadapter"
	"github.com/qzpost/quizbot/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
	_ "github.com/tarantool/go-tarantool/v2/datetime"
	_ "github.com/tarantool/go-tarantool/v2/decimal"
	_ "github.com/tarantool/go-tarantool/v2/uuid"
)

type tarantoolConfig struct {
	address  string
	user     string
	password string
}

const (
	ttReconnectSeconds = 3
	ttMaxReconnects    = 5
)

func main() {
	// Not an error if missing, env vars may come from the environment.
	_ = godotenv.Load()

	ctx := context.Background()

	ttCfg := loadTarantoolConfig()
	conn, err := connectTarantool(ctx, ttCfg)
	if err != nil {
		log.Fatalf("Connection to tarantool refused: %v", err)
	}
	log.Println("Succesfully connected to tarantool")

	postRepo := ttadapter.NewPostRepository(conn)
	userRepo := ttadapter.NewUserRepository(conn)
	voteRepo := ttadapter.NewVoteRepository(conn)
	sessionRepo := ttadapter.NewSessionRepository(conn)

	authoring := usecase.NewAuthoring(sessionRepo, postRepo, userRepo)
	ledger := usecase.NewLedger(postRepo, userRepo, voteRepo)
	stats := usecase.NewStats(postRepo)

	adapter, err := telegram.New(telegram.LoadConfig())
	if err != nil {
		log.Fatalf("Could not connect to telegram: %v", err)
	}
	quizBot := bot.New(authoring, ledger, stats, adapter)
	adapter.Bind(quizBot)

	setupGracefulShutdown(adapter)
	adapter.Listen(ctx)
}

func setupGracefulShutdown(adapter *telegram.Adapter) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			adapter.Close()
			log.Println("Shutting down")
			os.Exit(0)
		}
	}()
}

func loadTarantoolConfig() tarantoolConfig {
	var cfg tarantoolConfig

	cfg.address = os.Getenv("TT_ADDRESS")
	if cfg.address == "" {
		cfg.address = "127.0.0.1:3301"
	}
	cfg.user = os.Getenv("TT_USER")
	if cfg.user == "" {
		log.Fatal("Tarantool user is not set")
	}
	cfg.password = os.Getenv("TT_PASSWORD")
	if cfg.password == "" {
		log.Fatal("Tarantool password is not set")
	}

	return cfg
}

func connectTarantool(ctx context.Context, cfg tarantoolConfig) (*tarantool.Connection, error) {
	dialer := tarantool.NetDialer{
		Address:  cfg.address,
		User:     cfg.user,
		Password: cfg.password,
	}
	opts := tarantool.Opts{
		Timeout:       time.Second,
		Reconnect:     ttReconnectSeconds * time.Second,
		MaxReconnects: ttMaxReconnects,
	}

	return tarantool.Connect(ctx, dialer, opts)
}
