package app

import (
	"context"
	"fmt"
	"os"

	"kubel/internal/config"
	"kubel/internal/kubectl"
	"kubel/internal/ledger"
	"kubel/internal/metrics"
	"kubel/internal/probe"
	"kubel/internal/process"
	"kubel/internal/readiness"
	"kubel/pkg/logging"
)

// PollerSpawner starts a polling child for one resource kind.
type PollerSpawner interface {
	SpawnPoller(ctx context.Context, resource string) (*process.Handle, error)
}

// Application is the command layer between a host (CLI, editor, MCP client)
// and the process ledger.
type Application struct {
	config     *Config
	ledger     *ledger.Ledger
	pollers    PollerSpawner
	metrics    *metrics.PrometheusCollector
	logEntries <-chan logging.LogEntry
}

// NewApplication loads configuration, sets up logging and installs the
// process-wide ledger.
func NewApplication(cfg *Config) (*Application, error) {
	kubelCfg, err := loadKubelConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg.KubelConfig = &kubelCfg

	level := logging.ParseLevel(kubelCfg.Logging.Level)
	if cfg.Debug {
		level = logging.LevelDebug
	}
	var entries <-chan logging.LogEntry
	if cfg.EditorMode {
		entries = logging.InitForEditor(level, 0)
	} else {
		logging.InitForCLI(level, os.Stderr)
	}

	pm := metrics.NewPrometheus("kubel")

	spawner := kubectl.NewSpawner(kubectl.NewBuilder(kubelCfg.Kubectl), kubelCfg.Output.MaxLines)
	spawner.Metrics = pm

	waiter := readiness.NewWaiter(probe.NewClient(kubelCfg.Readiness.ProbeTimeout))
	waiter.RetryCount = kubelCfg.Readiness.RetryCount
	waiter.RetryWait = kubelCfg.Readiness.RetryWait
	waiter.Metrics = pm

	a := newApplication(cfg, spawner,
		ledger.WithSpawner(spawner),
		ledger.WithWaiter(waiter),
		ledger.WithProxyPort(kubelCfg.Proxy.Port),
		ledger.WithMetrics(pm),
	)
	a.metrics = pm
	a.logEntries = entries

	logging.Info("Bootstrap", "kubectl=%s proxy port=%d readiness=%dx%s",
		kubelCfg.Kubectl.Binary, kubelCfg.Proxy.Port, kubelCfg.Readiness.RetryCount, kubelCfg.Readiness.RetryWait)
	return a, nil
}

func newApplication(cfg *Config, pollers PollerSpawner, opts ...ledger.Option) *Application {
	return &Application{
		config:  cfg,
		ledger:  ledger.Init(opts...),
		pollers: pollers,
	}
}

func loadKubelConfig(cfg *Config) (config.KubelConfig, error) {
	if cfg.ConfigPath != "" {
		kubelCfg, err := config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			return config.KubelConfig{}, fmt.Errorf("failed to load kubel configuration from path %s: %w", cfg.ConfigPath, err)
		}
		return kubelCfg, nil
	}
	kubelCfg, err := config.LoadConfig()
	if err != nil {
		return config.KubelConfig{}, fmt.Errorf("failed to load kubel configuration: %w", err)
	}
	return kubelCfg, nil
}

// Ledger exposes the session's ledger.
func (a *Application) Ledger() *ledger.Ledger { return a.ledger }

// Metrics returns the Prometheus collector, nil when built without one.
func (a *Application) Metrics() *metrics.PrometheusCollector { return a.metrics }

// LogEntries is the editor-mode log stream, nil in CLI mode.
func (a *Application) LogEntries() <-chan logging.LogEntry { return a.logEntries }
