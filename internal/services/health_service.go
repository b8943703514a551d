package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"shiftcal/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version    string
	buildTime  string
	gitCommit  string
	shifts     *ShiftService
	syncReady  bool
	startTime  time.Time
	now        func() time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service reporting on shifts
func NewHealthService(shifts *ShiftService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	info := contracts.GetVersionInfo()
	hs := &HealthService{
		version:   info.Version,
		buildTime: info.BuildTime,
		gitCommit: info.GitCommit,
		shifts:    shifts,
		startTime: time.Now(),
		now:       time.Now,
		logger:    logger.With(slog.String("component", "health")),
	}
	if shifts != nil {
		hs.syncReady = shifts.stores != nil
	}

	hs.logger.Info("HealthService initialized",
		slog.String("version", hs.version),
		slog.Bool("calendar_sync", hs.syncReady))
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: hs.now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["scanner"] = hs.checkScanner()
	status.Services["calendar_sync"] = hs.checkCalendarSync()

	if sh, ok := status.Services["scanner"].(ServiceHealth); ok && sh.Status != "ready" {
		status.Status = "unhealthy"
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: hs.now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" && hs.buildTime != "unknown" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" && hs.gitCommit != "unknown" {
		result["git_commit"] = hs.gitCommit
	}
	return result
}

func (hs *HealthService) checkScanner() ServiceHealth {
	if hs.shifts == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "shift service not initialized",
		}
	}
	p := hs.shifts.engine.Params()
	return ServiceHealth{
		Status:  "ready",
		Message: "strategy " + string(p.Strategy) + ", time zone " + hs.shifts.location.String(),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// Sync is optional, so a missing store factory is reported but not fatal
func (hs *HealthService) checkCalendarSync() ServiceHealth {
	if !hs.syncReady {
		return ServiceHealth{
			Status:  "disabled",
			Message: "no calendar store configured",
		}
	}
	return ServiceHealth{Status: "ready"}
}
