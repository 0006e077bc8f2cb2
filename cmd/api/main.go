package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"AlertConsoleAPI/internal/config"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/handler"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/metrics"
	"AlertConsoleAPI/internal/mqtt"
	"AlertConsoleAPI/internal/server"
	"AlertConsoleAPI/internal/service"
	"AlertConsoleAPI/internal/session"
	"AlertConsoleAPI/internal/websocket"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "alertconsole",
		Short:         "Admin console for Taboola/Outbrain alert rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newTriggerCmd(),
		newRulesCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Print()
	log.Info("Starting Alert Console server")

	// 3. Metrics and Gateway
	m := metrics.New()
	gw, err := gateway.New(cfg.Gateway, nil, log, m)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	log.Info("Forwarding API calls to %s", gw.BaseURL())

	cookies := session.NewCookies(session.CookieConfig{
		HashKey: []byte(cfg.Session.HashKey),
		MaxAge:  cfg.Session.MaxAge,
		Secure:  cfg.IsProduction(),
	})

	// 4. Optional MQTT event publisher
	var (
		mqttClient *mqtt.Client
		events     service.EventPublisher
	)
	if cfg.MQTTEnabled() {
		mqttClient, err = mqtt.NewClient(mqtt.ClientConfig{MQTT: &cfg.MQTT, Logger: log})
		if err != nil {
			return fmt.Errorf("failed to create MQTT client: %w", err)
		}
		if err := mqttClient.Connect(); err != nil {
			// auto-reconnect keeps trying; events are dropped with a warning meanwhile
			log.Warn("MQTT broker not reachable yet: %v", err)
		}
		defer mqttClient.Disconnect()
		events = mqttClient
	} else {
		log.Info("MQTT_BROKER not set, event publishing disabled")
	}

	// 5. WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 6. Initialize Services
	ruleService := service.NewRuleService(gw, events, log)
	triggerService := service.NewTriggerService(gw, service.TriggerConfig{
		Concurrency: cfg.Trigger.Concurrency,
		Hub:         hub,
		Events:      events,
		Metrics:     m,
		Logger:      log,
	})

	// 7. Initialize Handlers
	proxyHandler := handler.NewProxyHandler(gw, cookies, log)
	authHandler := handler.NewAuthHandler(gw, cookies, log)
	consoleHandler := handler.NewConsoleHandler(ruleService, cookies, log)
	triggerHandler := handler.NewTriggerHandler(triggerService, cookies, hub, websocket.Upgrader(cfg.Security.CORSAllowedOrigins), log)
	pageHandler := handler.NewPageHandler(log)
	healthHandler := handler.NewHealthHandler(mqttClient, log)

	// 8. Start HTTP Server
	srv := server.New(cfg, log, cookies, m)
	srv.RegisterHandlers(proxyHandler, authHandler, consoleHandler, triggerHandler, pageHandler, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info("Console ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
		log.Warn("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
	return nil
}
