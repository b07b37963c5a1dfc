// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/shelf/internal/core/domain"
)

// Transport invokes named backend functions.
//
//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks
type Transport interface {
	// Query runs a read-only function.
	Query(ctx context.Context, name string, args domain.Args) (any, error)

	// Mutate runs a write function. A failed write leaves the backend unchanged.
	Mutate(ctx context.Context, name string, args domain.Args) (any, error)
}
