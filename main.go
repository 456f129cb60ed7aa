// main.go
//
// Entry point for the Wordle arena server.
// Responsibilities:
//   - Load configuration (.env + environment) and set the log level.
//   - Load the dictionary and construct the engine.
//   - Open the results ledger, the invite signer and the websocket hub.
//   - Run the idle sweeper and the HTTP server until SIGINT/SIGTERM.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/arena-server/internal/config"
	"github.com/robalobadob/wordle/apps/arena-server/internal/engine"
	"github.com/robalobadob/wordle/apps/arena-server/internal/history"
	"github.com/robalobadob/wordle/apps/arena-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/arena-server/internal/invite"
	"github.com/robalobadob/wordle/apps/arena-server/internal/realtime"
	"github.com/robalobadob/wordle/apps/arena-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dict, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load word list")
	}
	log.Info().Int("words", dict.Len()).Msg("dictionary loaded")

	hist, err := history.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open history")
	}
	defer hist.Close()

	eng := engine.New(dict, words.CryptoSource{}, time.Now)
	hub := realtime.NewHub(cfg.ClientOrigin)
	srv := httpserver.New(httpserver.Deps{
		Engine:         eng,
		History:        hist,
		Invites:        invite.NewSigner(cfg.InviteSecret, cfg.InviteTTL, nil),
		Hub:            hub,
		ClientOrigin:   cfg.ClientOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SweepEnabled() {
		go sweep(ctx, eng, hub, cfg)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting arena-server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// sweep evicts idle sessions and rooms every SweepInterval until ctx ends.
// Subscribers of an evicted room are disconnected.
func sweep(ctx context.Context, eng *engine.Engine, hub *realtime.Hub, cfg config.Config) {
	t := time.NewTicker(cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sessions, rooms := eng.Sweep(cfg.SessionIdleTTL, cfg.RoomIdleTTL)
			for _, id := range rooms {
				hub.CloseRoom(id)
			}
			if len(sessions) > 0 || len(rooms) > 0 {
				log.Info().Strs("gameIds", sessions).Strs("roomIds", rooms).Msg("evicted idle entries")
			}
		}
	}
}
