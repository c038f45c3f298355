package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/session-server/internal/config"
	"github.com/robalobadob/wordle/apps/session-server/internal/daily"
	"github.com/robalobadob/wordle/apps/session-server/internal/game"
	"github.com/robalobadob/wordle/apps/session-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/session-server/internal/session"
	"github.com/robalobadob/wordle/apps/session-server/internal/store"
	"github.com/robalobadob/wordle/apps/session-server/internal/words"
)

func main() {
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	lists, err := words.Open(words.Config{
		AnswersFile: cfg.Words.AnswersFile,
		AllowedFile: cfg.Words.AllowedFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load word lists: %w", err)
	}
	log.Info().Int("answers", lists.Answers.Len()).Int("allowed", lists.Allowed.Len()).Msg("word lists loaded")

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	engine := game.NewEngine(lists.Allowed, targetProvider(cfg, lists))
	srv, err := httpserver.New(session.NewService(engine, st), lists, cfg)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Str("targets", cfg.Words.TargetMode).Msg("starting session-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if sq, ok := st.(*store.SQLite); ok {
		eg.Go(func() error { return purgeLoop(ctx, sq, cfg.Store.PurgeInterval, cfg.Session.TTL) })
	}
	return eg.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return store.NewRedisStore(ctx, cfg.Store.RedisAddr(), cfg.Session.TTL)
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.Store.SQLitePath)
	default:
		return store.NewMemoryStore(), nil
	}
}

func targetProvider(cfg *config.Config, lists *words.Lists) game.TargetProvider {
	switch cfg.Words.TargetMode {
	case config.TargetDaily:
		return daily.NewPicker(lists.Answers, cfg.Words.DailySalt)
	case config.TargetMemory:
		return lists.Answers
	default:
		return words.NewSampler(lists.AnswersSource)
	}
}

// purgeLoop drops stale sqlite sessions until ctx is done.
func purgeLoop(ctx context.Context, sq *store.SQLite, every, ttl time.Duration) error {
	if every <= 0 || ttl <= 0 {
		return nil
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := sq.PurgeExpired(ctx, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("purged stale sessions")
			}
		}
	}
}
