package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/calendarsync"
	"shiftcal/internal/shared/testutil"
	"shiftcal/pkg/contracts"
)

func TestHealthCheck(t *testing.T) {
	svc, _ := newTestService(t, &fakeDownloader{}, nil)
	logger, handler := testutil.NewTestLogger(t)

	hs := NewHealthService(svc, logger)
	fixed := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	hs.now = func() time.Time { return fixed }

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.Equal(t, fixed, status.Timestamp)

	scanner, ok := status.Services["scanner"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "ready", scanner.Status)
	assert.Contains(t, scanner.Message, "strategy date_anchored")
	assert.Contains(t, scanner.Message, "AEST")

	sync, ok := status.Services["calendar_sync"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "disabled", sync.Status)

	testutil.AssertLogAttr(t, handler, "component", "health")
}

func TestHealthCheckWithSync(t *testing.T) {
	factory := func(context.Context, string) (calendarsync.EventStore, error) { return &memoryStore{}, nil }
	svc, _ := newTestService(t, &fakeDownloader{}, factory)

	status := NewHealthService(svc, nil).HealthCheck(context.Background())
	sync := status.Services["calendar_sync"].(ServiceHealth)
	assert.Equal(t, "ready", sync.Status)
}

func TestHealthCheckWithoutScanner(t *testing.T) {
	status := NewHealthService(nil, nil).HealthCheck(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
}

func TestLivenessCheck(t *testing.T) {
	status := NewHealthService(nil, nil).LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestVersion(t *testing.T) {
	hs := NewHealthService(nil, nil)
	info := hs.Version()
	assert.Equal(t, contracts.Version, info["version"])
	assert.NotContains(t, info, "build_time", "unset build metadata is omitted")

	hs.buildTime = "2025-04-01T00:00:00Z"
	assert.Equal(t, "2025-04-01T00:00:00Z", hs.Version()["build_time"])
}
