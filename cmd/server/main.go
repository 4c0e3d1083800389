package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundboard/soundboard/internal/config"
	"github.com/soundboard/soundboard/nowplaying"
	"github.com/soundboard/soundboard/server"
	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify/apiclient"
	"github.com/soundboard/soundboard/spotify/authclient"
	"github.com/soundboard/soundboard/store"
	"github.com/soundboard/soundboard/toptracks"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	kv, err := newKV(c)
	if err != nil {
		return errors.Wrap(err, "opening token store")
	}
	sessionStore := session.NewStore(kv)

	auth, err := authclient.New(c, sessionStore)
	if err != nil {
		return errors.Wrap(err, "building auth client")
	}
	api := apiclient.New()

	sessions, err := session.New(sessionStore, auth, session.WithRefreshMargin(c.GetRefreshMargin()))
	if err != nil {
		return errors.Wrap(err, "building session controller")
	}

	topTracks, err := toptracks.New(sessions, api)
	if err != nil {
		return errors.Wrap(err, "building top tracks controller")
	}

	poller, err := nowplaying.New(sessions, api, c.GetNowPlayingInterval())
	if err != nil {
		return errors.Wrap(err, "building now-playing poller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	handler, err := server.New(c, sessions, api, topTracks, poller)
	if err != nil {
		return errors.Wrap(err, "building server")
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newKV(c config.Config) (store.KV, error) {
	if c.GetStorageBackend() == "keyring" {
		return store.NewKeyringStore(), nil
	}
	return store.DefaultFileStore()
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Err(err).Msg("listen and serve")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
