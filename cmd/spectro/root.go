package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lumen-instruments/spectro-go/pkg/api"
	"github.com/lumen-instruments/spectro-go/pkg/config"
	"github.com/lumen-instruments/spectro-go/pkg/devices"
	"github.com/lumen-instruments/spectro-go/pkg/log"
	"github.com/lumen-instruments/spectro-go/pkg/metrics"
	"github.com/lumen-instruments/spectro-go/pkg/registry"
	"github.com/lumen-instruments/spectro-go/pkg/transport/serial"
	"github.com/lumen-instruments/spectro-go/pkg/transport/tcp"
	"github.com/lumen-instruments/spectro-go/pkg/transport/usb"
)

// app holds the persistent flags shared by every command.
type app struct {
	configPath string
	logLevel   string
	capture    string
	sim        bool

	// drivers overrides driver construction. Tests set it.
	drivers func(config.Config, *slog.Logger) (devices.Drivers, func())
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "spectro",
		Short:         "spectro drives spectrometers over USB, RS-232 and TCP",
		Long:          `spectro probes for known instrument types, reads spectra, streams buffered acquisitions and views protocol captures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&a.capture, "capture", "", "Protocol capture file (overrides config)")
	root.PersistentFlags().BoolVar(&a.sim, "sim", false, "Use simulated instruments instead of hardware")

	root.AddCommand(
		newProbeCmd(a),
		newSpectrumCmd(a),
		newAcquireCmd(a),
		newShellCmd(a),
		newLogCmd(),
	)
	return root
}

// session is everything one command run needs: the loaded configuration,
// a registry holding the configured devices and the boundary over it.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	reg    *registry.Registry
	api    *api.API

	closers []func()
}

// loadConfig reads the configuration file and applies flag overrides.
func (a *app) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return cfg, err
		}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.capture != "" {
		cfg.Log.Capture = a.capture
	}
	return cfg, cfg.Validate()
}

// open builds a session. The caller must Close it.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	var capture log.Logger
	if cfg.Log.Capture != "" {
		fl, err := log.NewFileLogger(cfg.Log.Capture)
		if err != nil {
			return nil, fmt.Errorf("open capture: %w", err)
		}
		s.closers = append(s.closers, func() {
			if n := fl.Dropped(); n > 0 {
				s.logger.Warn("capture events dropped", "count", n)
			}
			_ = fl.Close()
		})
		capture = fl
		if cfg.Log.SlogLevel() <= slog.LevelDebug {
			capture = log.NewMultiLogger(fl, log.NewSlogAdapter(s.logger))
		}
	}

	collector, err := s.serveMetrics()
	if err != nil {
		s.Close()
		return nil, err
	}

	build := a.drivers
	if build == nil {
		build = hardwareDrivers
		if a.sim {
			build = simDrivers
		}
	}
	drivers, release := build(cfg, s.logger)
	if release != nil {
		s.closers = append(s.closers, release)
	}

	s.reg = registry.New(devices.Default(), registry.Options{
		Device: devices.Options{
			Drivers:       drivers,
			Timeouts:      cfg.Timeouts.ByKind(),
			BrowseTimeout: cfg.Discovery.BrowseTimeout,
			Logger:        s.logger,
			Capture:       capture,
			Metrics:       collector,
		},
		Types: cfg.Discovery.Types,
	})
	s.api = api.New(s.reg, s.logger)

	for i, d := range cfg.Devices {
		loc, err := d.Locator()
		if err == nil {
			_, err = s.reg.AddSpecified(d.Type, loc)
		}
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("devices[%d]: %w", i, err)
		}
	}
	return s, nil
}

// serveMetrics starts the Prometheus endpoint when one is configured.
func (s *session) serveMetrics() (*metrics.Collector, error) {
	if s.cfg.Metrics.Listen == "" {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: s.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics endpoint failed", "listen", s.cfg.Metrics.Listen, "error", err)
		}
	}()
	s.logger.Info("serving metrics", "listen", s.cfg.Metrics.Listen)

	s.closers = append(s.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return collector, nil
}

// Close destroys every device and releases drivers and files in reverse
// order of acquisition.
func (s *session) Close() {
	if s.api != nil {
		s.api.Shutdown()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// hardwareDrivers builds the real transports selected by cfg.
func hardwareDrivers(cfg config.Config, logger *slog.Logger) (devices.Drivers, func()) {
	drv := devices.Drivers{
		Serial: serial.Driver{},
		Dialer: tcp.Dialer{},
	}
	var release func()
	if cfg.Discovery.USB {
		u := usb.NewDriver()
		drv.USB = u
		release = func() { _ = u.Close() }
	}
	if cfg.Discovery.MDNS {
		drv.Browser = tcp.NewBrowser(tcp.BrowserConfig{
			Interface: cfg.Discovery.Interface,
			Logger:    logger,
		})
	}
	return drv, release
}

// codeError turns a non-success boundary code into an error.
func codeError(op string, code api.Code) error {
	if code == api.CodeSuccess {
		return nil
	}
	return fmt.Errorf("%s: %s", op, code)
}
