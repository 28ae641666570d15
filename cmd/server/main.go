package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/npezzotti/go-reelroom/internal/api"
	"github.com/npezzotti/go-reelroom/internal/auth"
	"github.com/npezzotti/go-reelroom/internal/chatroom"
	"github.com/npezzotti/go-reelroom/internal/config"
	"github.com/npezzotti/go-reelroom/internal/database"
	"github.com/npezzotti/go-reelroom/internal/moderation"
	"github.com/npezzotti/go-reelroom/internal/presence"
	"github.com/npezzotti/go-reelroom/internal/server"
	"github.com/npezzotti/go-reelroom/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	tokenTTL       time.Duration
	migrate        bool
	allowedOrigins stringSliceFlag
	censoredWords  stringSliceFlag
)

func main() {
	logger := log.New(os.Stderr, "[reelroom] ", log.LstdFlags)

	env, err := config.LoadEnv()
	if err != nil {
		logger.Fatal("env:", err)
	}

	flag.StringVar(&addr, "addr", env.Addr, "server address")
	flag.StringVar(&dsn, "dsn", env.DSN, "database connection string")
	flag.StringVar(&signingKey, "signing-key", env.SigningKey, "base64 encoded signing key")
	flag.DurationVar(&tokenTTL, "token-ttl", env.TokenTTL, "lifetime of issued session tokens")
	flag.BoolVar(&migrate, "migrate", env.Migrate, "apply database migrations on startup")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Var(&censoredWords, "censored-words", "comma-separated list of words masked in chat messages")
	flag.Parse()

	if len(allowedOrigins) == 0 {
		allowedOrigins = env.AllowedOrigins
	}
	if len(censoredWords) == 0 {
		censoredWords = env.CensoredWords
	}

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}
	cfg.CensoredWords = censoredWords
	cfg.TokenTTL = tokenTTL
	cfg.RunMigrations = migrate

	dbConn, err := database.NewPgGoChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Println("db close:", err)
		}
	}()

	if cfg.RunMigrations {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("db migrate:", err)
		}
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	moderator, err := moderation.NewModerator(cfg.CensoredWords, moderation.DefaultCensorChar)
	if err != nil {
		logger.Fatal("moderator:", err)
	}

	authenticator := auth.NewAuthenticator(cfg.SigningKey, dbConn, cfg.TokenTTL)

	chatServer, err := server.NewChatServer(logger, dbConn, authenticator, moderator, presence.NewRegistry(), statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	chatrooms := chatroom.NewManager(logger, dbConn, chatServer)

	srv := api.NewGoChatApp(mux, logger, chatServer, dbConn, chatrooms, authenticator, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go chatServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Println("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Println("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
