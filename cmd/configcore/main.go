// configcore - layered configuration resolution engine
//
// This is the main entry point for the configcore daemon. It assembles the
// bootstrap provider chain (defaults, database, config files, environment),
// constructs the global configuration store behind the startup gate, and
// serves resolved configuration over HTTP with a WebSocket change feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ironvale/configcore/internal/api"
	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/database"
	"github.com/ironvale/configcore/internal/infrastructure/logging"
	"github.com/ironvale/configcore/internal/notify"
	"github.com/ironvale/configcore/internal/provider"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	var (
		configDir   = flag.String("config-dir", "configs", "directory holding config.{json,yaml} overlays")
		dbPath      = flag.String("db", "data/configcore.db", "SQLite database path (empty disables the database provider)")
		environment = flag.String("environment", envOrDefault("CONFIGCORE_ENV", "production"), "deployment environment stamped on store identities")
		addr        = flag.String("addr", ":8765", "HTTP listen address")
		logLevel    = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "json", "log format (json, text)")
	)
	flag.Parse()

	log := logging.New(logging.Config{Level: *logLevel, Format: *logFormat, Output: "stdout"}, version)
	log.Info("starting configcore",
		"version", version,
		"commit", commit,
		"build_date", date,
		"environment", *environment,
	)

	// Open the persistent entry store. The database provider is optional;
	// an empty path runs the engine on defaults, files, and environment only.
	var db *database.DB
	if *dbPath != "" {
		var err error
		db, err = database.Open(database.Config{Path: *dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring database schema: %w", err)
		}
		log.Info("database connected", "path", db.Path())
	} else {
		log.Info("database provider disabled")
	}

	// The factory hands out memoized stores per identity. Construction of
	// the global store below is the startup gate: missing critical keys
	// abort the process before anything is served.
	factory := configstore.NewFactory(configstore.FactoryOptions{
		Environment: *environment,
		Providers: func(id configstore.Identity) []configstore.Provider {
			return provider.Standard(id, provider.Chain{Dir: *configDir, DB: db, Logger: log})
		},
		CacheEnabled:      true,
		CacheTTL:          configstore.DefaultCacheTTL,
		ValidationEnabled: true,
		CriticalKeys:      provider.CriticalKeys(),
		Logger:            log,
	})

	store, err := factory.Global(ctx)
	if err != nil {
		var missing *configstore.MissingCriticalError
		if errors.As(err, &missing) {
			log.Error("startup gate failed", "missing_keys", missing.Keys)
		}
		return fmt.Errorf("constructing global configuration store: %w", err)
	}
	log.Info("global configuration store ready")

	// Change notification: WebSocket hub always, MQTT when a broker is
	// configured. Both hang off one broadcaster so Set never blocks on I/O.
	hub := notify.NewHub(store.WebSocketSettings(), log)
	broadcaster := notify.NewBroadcaster(log, hub)
	defer broadcaster.Close()

	if host := store.GetString("mqtt.host", ""); host != "" {
		publisher, mqttErr := notify.ConnectMQTT(notify.MQTTConfig{
			Host:     host,
			Port:     int(store.GetInt("mqtt.port", 1883)),
			TLS:      store.GetBool("mqtt.tls", false),
			ClientID: store.GetString("mqtt.client_id", "configcore"),
			Username: store.GetString("mqtt.username", ""),
			Password: store.GetString("mqtt.password", ""),
			QoS:      byte(store.GetInt("mqtt.qos", 1)),
		}, log)
		if mqttErr != nil {
			log.Warn("mqtt sink unavailable, continuing without it", "error", mqttErr)
		} else {
			broadcaster.AddSink(publisher)
			defer publisher.Close()
		}
	}

	store.SetChangeNotifier(broadcaster)

	server, err := api.New(api.Deps{
		Addr:    *addr,
		Logger:  log,
		Store:   store,
		Hub:     hub,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if startErr := server.Start(gctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		<-gctx.Done()
		return server.Close()
	})

	log.Info("configcore running", "address", *addr)
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("configcore shut down cleanly")
	return nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
