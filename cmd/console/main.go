package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-console/authapi"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/monitor"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const cookieFileName = "cookies.json"

func main() {
	port := pflag.String("port", "", "listen address, overrides "+config.PortEnvVar)
	apiBaseURL := pflag.String("api-base-url", "", "Auth API base URL, overrides "+config.APIBaseURLEnvVar)
	dataFolder := pflag.String("data-folder", "", "folder for persisted session cookies, overrides "+config.FolderEnvVar)
	env := pflag.String("env", "", "environment name, overrides "+config.EnvironmentVar)
	pflag.Parse()

	c := config.New(
		config.WithOverride(config.PortEnvVar, *port),
		config.WithOverride(config.APIBaseURLEnvVar, *apiBaseURL),
		config.WithOverride(config.FolderEnvVar, *dataFolder),
		config.WithOverride(config.EnvironmentVar, *env),
	)
	setupLogging(c)

	for {
		if err := run(c); err != nil {
			log.Error().Err(err).Msg("Error running console")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Console stopped")
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !c.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.Wrapf(errors.ErrInternal, "panic recovered: %v", r)
		}
	}()

	displayAppname(c.GetAppName())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cookies, err := storage.NewCookieStore(
		filepath.Join(c.GetDataFolder(), cookieFileName),
		storage.WithCookieAttributes(c.GetCookieMaxAge(), c.GetCookieSecure(), c.GetCookieSameSite(), c.GetCookiePath()),
	)
	if err != nil {
		return errors.Wrapf(err, "[run] cookie store")
	}
	stores := storage.NewDual(cookies, storage.NewLocalStore())

	tokens := authapi.NewStoreTokenSource(stores)
	api, err := authapi.NewHTTPClient(c,
		authapi.WithTokenSource(tokens),
		authapi.WithSessionToken(tokens.SessionToken),
	)
	if err != nil {
		return errors.Wrapf(err, "[run] auth api client")
	}

	store, err := session.NewStore(api, stores,
		session.WithMetrics(session.NewMetrics(registry)),
		session.WithRefreshTimeout(c.GetRequestTimeout()),
	)
	if err != nil {
		return errors.Wrapf(err, "[run] session store")
	}

	activity := monitor.New(store,
		monitor.WithRefreshInterval(c.GetRefreshInterval()),
		monitor.WithInactivityTimeout(c.GetInactivityTimeout()),
		monitor.WithRefreshTimeout(c.GetRequestTimeout()),
		monitor.WithMetrics(monitor.NewMetrics(registry)),
	)
	unsubscribe := store.Subscribe(activity.Observe)
	defer unsubscribe()
	defer activity.Stop()

	store.Initialize()

	handler, err := server.New(c, store, activity, server.WithGatherer(registry))
	if err != nil {
		return errors.Wrapf(err, "[run] server")
	}

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
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Console listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
