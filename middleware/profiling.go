package middleware

import (
	"fmt"

	"github.com/duynhne/connectspark-service/config"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

var profiler *pyroscope.Profiler

// InitProfiling starts continuous profiling against the Pyroscope endpoint.
// Profiler diagnostics go through logger.
func InitProfiling(cfg *config.Config, logger *zap.Logger) error {
	id := detectServiceIdentity(cfg.Profiling.ServiceName)

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: id.Name,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"service":   id.Name,
			"namespace": id.Namespace,
			"version":   cfg.Service.Version,
			"env":       cfg.Service.Env,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
		Logger: logger.Named("pyroscope").Sugar(),
	})
	if err != nil {
		return fmt.Errorf("start pyroscope: %w", err)
	}
	profiler = p
	return nil
}

// StopProfiling flushes and stops the profiler
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
