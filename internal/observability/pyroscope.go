package observability

import (
	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/fantrax-team-manager/internal/config"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

// InitPyroscope starts continuous profiling when a server address is
// configured.
func InitPyroscope(cfg *config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.PyroscopeAddr == "" {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ADDR empty")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.PyroscopeAddr,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeAddr)
	return profiler.Stop, nil
}
