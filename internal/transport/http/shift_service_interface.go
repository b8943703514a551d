package http

import (
	"context"

	"shiftcal/internal/services"
	api "shiftcal/pkg/contracts/api/v1"
)

// ShiftServiceInterface defines the interface for the shift service
type ShiftServiceInterface interface {
	Extract(ctx context.Context, req api.ProcessRequest) (*services.Extraction, error)
	Calendar(ctx context.Context, req api.ProcessRequest) ([]byte, error)
}
