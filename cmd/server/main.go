package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-posts-auth/auth"
	"github.com/jrsteele09/go-posts-auth/internal/config"
	"github.com/jrsteele09/go-posts-auth/internal/metrics"
	"github.com/jrsteele09/go-posts-auth/posts"
	"github.com/jrsteele09/go-posts-auth/server"
	"github.com/jrsteele09/go-posts-auth/storage/memstore"
	"github.com/jrsteele09/go-posts-auth/storage/postgres"
	"github.com/jrsteele09/go-posts-auth/token"
	"github.com/jrsteele09/go-posts-auth/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const dbPingTimeout = 5 * time.Second

func main() {
	// A missing .env file is fine; the process environment still applies
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, c)
	if err != nil {
		return err
	}
	defer st.close()

	handler, closeServer, err := newHandler(ctx, c, st)
	if err != nil {
		return err
	}
	defer closeServer()

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

type stores struct {
	users users.Repo
	posts interface {
		posts.Repo
		users.PostLister
	}
	close func()
}

// openStores selects Postgres when DATABASE_URL is set, otherwise the in-memory store
func openStores(ctx context.Context, c config.Config) (*stores, error) {
	databaseURL := c.GetDatabaseURL()
	if databaseURL == "" {
		if c.GetEnv() != "DEV" {
			return nil, fmt.Errorf("[openStores] DATABASE_URL is required when ENV is %s", c.GetEnv())
		}
		log.Warn().Msg("DATABASE_URL not set, using the in-memory store. Data is lost on restart")
		store := memstore.New()
		return &stores{users: store, posts: store, close: func() {}}, nil
	}

	if err := postgres.RunMigrations(databaseURL); err != nil {
		return nil, err
	}
	db, err := postgres.Open(ctx, databaseURL, dbPingTimeout)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Connected to Postgres")
	return &stores{
		users: postgres.NewUserRepo(db),
		posts: postgres.NewPostRepo(db),
		close: func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		},
	}, nil
}

func newHandler(ctx context.Context, c config.Config, s *stores) (http.Handler, func(), error) {
	directory, err := users.NewDirectory(s.users, s.posts)
	if err != nil {
		return nil, nil, err
	}
	postService, err := posts.NewService(s.posts)
	if err != nil {
		return nil, nil, err
	}
	codec, err := token.NewHMACCodec(c.GetJWTSecret(), token.WithExpiry(c.GetSessionTokenExpiry()))
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// The provider keeps ctx for refreshing signing keys, so it must outlive startup
	provider, err := auth.NewGoogleProvider(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	exchanger, err := auth.NewExchanger(provider, directory, codec,
		auth.WithProviderTimeout(c.GetOAuthTimeout()),
		auth.WithMetrics(collector),
	)
	if err != nil {
		return nil, nil, err
	}

	srv, err := server.New(ctx, c, server.Dependencies{
		Exchanger: exchanger,
		Tokens:    codec,
		Directory: directory,
		Posts:     postService,
		Metrics:   collector,
		Gatherer:  registry,
	})
	if err != nil {
		return nil, nil, err
	}
	return srv, srv.Close, nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
