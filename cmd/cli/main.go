package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campuscomplaint/internal/api"
	"campuscomplaint/internal/cli/command"
	"campuscomplaint/internal/cli/config"
	"campuscomplaint/internal/cli/repl"
	"campuscomplaint/internal/common/kv"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/session"
	"campuscomplaint/internal/tokenstore"
	"campuscomplaint/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	statePath := flag.String("state", "", "Override session file path")
	latitude := flag.Float64("lat", 0, "Override reported latitude")
	longitude := flag.Float64("lng", 0, "Override reported longitude")
	pretty := flag.Bool("pretty", false, "Pretty print JSON output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return 1
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.API.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.TokenStore.Backend = kv.BackendFile
		cfg.TokenStore.Path = *statePath
	}
	if *latitude != 0 || *longitude != 0 {
		cfg.Location.Latitude = *latitude
		cfg.Location.Longitude = *longitude
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	backend, err := kv.Open(ctx, cfg.TokenStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open token store failed: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			logger.Warn(ctx, "close token store failed", zap.Error(closeErr))
		}
	}()

	var storeOpts []tokenstore.Option
	if cfg.Session.ValidityWindow > 0 {
		storeOpts = append(storeOpts, tokenstore.WithValidityWindow(cfg.Session.ValidityWindow))
	}
	if cfg.Session.PresenceOnly {
		storeOpts = append(storeOpts, tokenstore.WithPresenceOnly())
	}
	manager := session.NewManager(tokenstore.New(backend, storeOpts...))
	client := api.New(cfg.API, manager)

	locations := &complaint.StaticLocationService{
		Disabled: cfg.Location.Disabled,
		Status:   complaint.PermissionStatus(cfg.Location.Permission),
		Grant:    complaint.PermissionGranted,
		Coords:   complaint.Coordinates{Latitude: cfg.Location.Latitude, Longitude: cfg.Location.Longitude},
	}
	var geocoder complaint.Geocoder
	if cfg.Geocoder.Enabled {
		geocoder = complaint.NewNominatimGeocoder(cfg.Geocoder.BaseURL, cfg.API.UserAgent, cfg.Geocoder.Timeout)
	}

	env := &command.Env{
		Client:   client,
		Session:  manager,
		Flow:     complaint.NewFlow(client, locations, geocoder),
		PageSize: cfg.PageSize,
	}

	route := session.Bootstrap(ctx, manager)
	logger.Info(ctx, "cli started", zap.String("base_url", client.BaseURL()), zap.String("route", string(route)))
	if route == session.RouteLogin {
		fmt.Println("not signed in, use: auth login mobile=<number> password=<password>")
	}

	shell := repl.New(env, command.Registry(), *cfg.PrettyJSON, os.Stdout)
	if err := shell.Run(ctx, cfg.HistoryFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}
