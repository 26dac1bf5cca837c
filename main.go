package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gloves/internal/config"
	"gloves/internal/logger"
	"gloves/internal/models"
	"gloves/internal/netif"
	"gloves/internal/routes"
	"gloves/internal/sensor"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "gloves",
		Short:        "Status API for the gloves wearable: Wi-Fi, hardware and motion sensors",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("ssid", "", "network name to join")
	flags.String("password", "", "pre-shared key")
	flags.String("driver", "", "wifi driver: sim or host")
	flags.String("interface", "", "host interface used by the host driver")
	flags.String("listen", "", "HTTP listen address")
	flags.String("log-level", "", "log level")

	bindFlags(v, cmd, map[string]string{
		"wifi.ssid":      "ssid",
		"wifi.password":  "password",
		"wifi.driver":    "driver",
		"wifi.interface": "interface",
		"http.listen":    "listen",
		"log.level":      "log-level",
	})

	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	log := logger.WithComponent("main")
	startedAt := time.Now()

	mpu := sensor.NewSim(cfg.Motion.Amplitude, 2*time.Second)
	defer mpu.Close()

	motion := services.NewMotionCollector(mpu, cfg.Motion.History, logger.WithComponent("motion"))

	station := services.NewStation(newDriver(cfg), logger.WithComponent("wifi"))
	defer station.Close()

	hub := services.NewWebSocketHub(motion, station, time.Second, logger.WithComponent("ws"))
	defer hub.Stop()

	station.OnStateChange(func(status models.NetworkStatus) {
		hub.Broadcast(services.WebSocketMessage{
			Type:      "network",
			Timestamp: time.Now(),
			Data:      status,
		})
	})

	outcome, err := station.Initialize(ctx, cfg.WiFi.SSID, cfg.WiFi.Password, services.StationSettings{
		AuthThreshold: cfg.AuthThreshold(),
		PMF:           netif.PMF{Capable: cfg.WiFi.PMFCapable, Required: cfg.WiFi.PMFRequire},
		Hostname:      cfg.WiFi.Hostname,
		MaxRetry:      cfg.WiFi.MaxRetry,
	})
	if err != nil {
		return err
	}
	if outcome == models.StationFailed {
		log.Warn().Str("ssid", cfg.WiFi.SSID).Msg("continuing without network")
	}

	motion.Start(ctx, cfg.Motion.Interval)
	defer motion.Stop()

	hardware := services.NewHardwareCache(
		services.NewHardwareProbe(cfg.Hardware.Chip, cfg.Hardware.DataPath, models.Features{
			WiFi: cfg.Hardware.WiFi,
			BT:   cfg.Hardware.BT,
			BLE:  cfg.Hardware.BLE,
		}),
		cfg.Hardware.CacheTTL,
	)

	gin.SetMode(gin.ReleaseMode)
	router := routes.NewRouter(routes.Dependencies{
		Network:   station,
		Hardware:  hardware,
		Motion:    motion,
		Hub:       hub,
		StartedAt: startedAt,
	}, routes.RouterOptions{
		RateLimit: cfg.HTTP.RateLimit,
		RateBurst: cfg.HTTP.RateBurst,
		Logger:    logger.WithComponent("api"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed to start")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func newDriver(cfg *config.Config) netif.Driver {
	if cfg.WiFi.Driver == config.DriverHost {
		return netif.NewHost(cfg.WiFi.Interface)
	}

	auth := cfg.AuthThreshold()
	if auth < netif.AuthWPA2PSK {
		auth = netif.AuthWPA2PSK
	}
	return netif.NewSim(netif.SimOptions{
		SSID:         cfg.WiFi.SSID,
		Password:     cfg.WiFi.Password,
		Auth:         auth,
		PMFSupported: true,
		MAC:          net.HardwareAddr{0x02, 0x47, 0x4c, 0x4f, 0x56, 0x45},
		IP:           netip.MustParseAddr("192.168.4.2"),
		Netmask:      netip.MustParseAddr("255.255.255.0"),
		Gateway:      netip.MustParseAddr("192.168.4.1"),
		DNS:          []netip.Addr{netip.MustParseAddr("192.168.4.1")},
	})
}
