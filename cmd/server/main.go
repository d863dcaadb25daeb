package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trivia-token-service/conf"
	"trivia-token-service/controller"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/metrics"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/common_service"
	"trivia-token-service/service/eligibility_service"
	"trivia-token-service/service/forge_service"
	"trivia-token-service/service/mint_service"
)

var ENV string

func init() {
	flag.StringVar(&ENV, "env", "loc", "Environment: loc/test/mainnet/example")
}

// @title           Trivia Token Service API
// @version         1.0
// @description     Eligibility claims, catalog minting and burn-then-mint forging of trivia collectible tokens

// @host      localhost:7290
// @BasePath  /

// @schemes http https

// app everything main starts and stops
type app struct {
	logger   *log.Logger
	db       database.Database
	ledger   *ledger.Serializer
	notifier *ledger.Notifier

	catalog *catalog_service.CatalogService
	mint    *mint_service.MintService
	forge   *forge_service.ForgeService
	srv     *http.Server
}

func main() {
	// Initialize all components
	a := initAll()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Start background processors (in goroutines)
	startProcessors(ctx, &wg, a)
	log.Println("Processors started successfully")

	// Start HTTP API service (in goroutine)
	go startServer(a.srv)
	log.Println("API service started successfully")

	// Wait for shutdown signal
	waitForShutdown()

	log.Println("Shutting down trivia token service...")

	// Gracefully shutdown HTTP service, then let processors finish their current step
	shutdownServer(a.srv)
	cancel()
	wg.Wait()
	a.close()

	log.Println("Server exited")
}

// initAll initialize all components
func initAll() *app {
	// Parse command line parameters
	flag.Parse()

	// Set environment
	conf.SystemEnvironmentEnum = conf.ParseEnvironment(ENV)
	fmt.Printf("Environment: %s\n", conf.SystemEnvironmentEnum)

	// Initialize configuration
	if err := conf.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := conf.Cfg
	log.Printf("Configuration loaded: env=%s, port=%s, db=%s, ledger=%s", ENV, cfg.Server.Port, cfg.Database.Type, cfg.Ledger.Mode)

	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	// Initialize database
	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize ledger client; every submission goes through one serializer
	client, err := initLedger(cfg.Ledger)
	if err != nil {
		log.Fatalf("Failed to initialize ledger client: %v", err)
	}
	serializer := ledger.NewSerializer(client, cfg.Ledger.QueueSize)

	calendar, err := initSeasons(cfg.Seasons)
	if err != nil {
		log.Fatalf("Failed to load season calendar: %v", err)
	}

	var sink metrics.Sink = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		sink = prom
		metricsHandler = prom.Handler()
	}

	opts := common_service.Options{Logger: logger, Metrics: sink}
	policy := common_service.LedgerPolicy{
		SubmitRetries:   cfg.Ledger.SubmitRetries,
		RetryInterval:   cfg.Ledger.RetryInterval,
		MaxPollAttempts: cfg.Ledger.MaxPollAttempts,
	}

	// Create services
	eligibility := eligibility_service.NewEligibilityService(db, eligibility_service.Windows{
		Guest:  cfg.Eligibility.GuestWindow,
		Player: cfg.Eligibility.PlayerWindow,
	}, opts)
	catalog := catalog_service.NewCatalogService(db, cfg.Catalog.ReleaseWindow, opts)
	mint := mint_service.NewMintService(db, eligibility, catalog, serializer, calendar, policy, opts)
	forge := forge_service.NewForgeService(db, serializer, calendar, policy, opts)

	// Setup router
	router := controller.SetupRouter(controller.Services{
		Eligibility: eligibility,
		Catalog:     catalog,
		Mint:        mint,
		Forge:       forge,
		Metrics:     metricsHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	a := &app{
		logger:  logger,
		db:      db,
		ledger:  serializer,
		catalog: catalog,
		mint:    mint,
		forge:   forge,
		srv:     srv,
	}

	if cfg.Ledger.ZmqEnabled {
		a.notifier = ledger.NewNotifier(cfg.Ledger.ZmqAddress)
		if err := a.notifier.Start(); err != nil {
			log.Printf("Failed to start ledger notifier, polling only: %v", err)
			a.notifier = nil
		}
	}
	return a
}

// initDatabase initialize database based on configuration
func initDatabase(cfg conf.DatabaseConfig) (database.Database, error) {
	dbType := database.DBType(cfg.Type)

	switch dbType {
	case database.DBTypePebble:
		return database.NewDatabase(dbType, &database.PebbleConfig{
			DataDir: cfg.DataDir,
		})
	case database.DBTypePostgres:
		return database.NewDatabase(dbType, &database.PostgresConfig{
			DSN:             cfg.Dsn,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// initLedger build the configured ledger client
func initLedger(cfg conf.LedgerConfig) (ledger.Client, error) {
	switch cfg.Mode {
	case "memory":
		log.Println("Using in-memory ledger, nothing leaves this process")
		return ledger.NewMemoryClient(), nil
	case "rpc":
		client, err := ledger.NewRPCClient(ledger.RPCConfig{
			URL:           cfg.RpcUrl,
			SigningKeyHex: cfg.SigningKeyHex,
			Timeout:       cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported ledger mode: %s", cfg.Mode)
	}
}

// initSeasons build the season calendar from configuration
func initSeasons(cfg conf.SeasonsConfig) (*registry.SeasonCalendar, error) {
	windows := make([]registry.SeasonWindow, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		start, end, err := conf.ParseSeasonWindow(w)
		if err != nil {
			return nil, err
		}
		windows = append(windows, registry.SeasonWindow{Code: w.Code, StartsAt: start, EndsAt: end})
	}
	return registry.NewSeasonCalendar(windows, cfg.GracePeriod)
}

// startProcessors start mint and forge processors and the stale reservation release loop
func startProcessors(ctx context.Context, wg *sync.WaitGroup, a *app) {
	var mintWake, forgeWake <-chan struct{}
	if a.notifier != nil {
		mintWake = a.notifier.Subscribe()
		forgeWake = a.notifier.Subscribe()
	}
	interval := conf.Cfg.Forge.ProcessInterval

	processors := []*common_service.Processor{
		common_service.NewProcessor("mint", interval, a.mint.ProcessActive, mintWake, a.logger),
		common_service.NewProcessor("forge", interval, a.forge.ProcessActive, forgeWake, a.logger),
	}
	for _, p := range processors {
		wg.Add(1)
		go func(p *common_service.Processor) {
			defer wg.Done()
			p.Run(ctx)
		}(p)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.catalog.RunReleaseLoop(ctx, conf.Cfg.Catalog.ReleaseInterval)
	}()
}

// startServer start HTTP server
func startServer(srv *http.Server) {
	log.Printf("API service starting on %s...", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// waitForShutdown wait for shutdown signal
func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

// shutdownServer gracefully shutdown server
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

// close release ledger and store handles
func (a *app) close() {
	if a.notifier != nil {
		a.notifier.Stop()
	}
	a.ledger.Close()
	if err := a.db.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
