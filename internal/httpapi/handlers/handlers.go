// Package handlers implements the convertd HTTP endpoints.
package handlers

import (
	"context"

	"convertd/internal/conversion"
	"convertd/internal/models"
	"convertd/internal/pkg/logger"
	"convertd/internal/ports"
)

// Converter runs a single conversion.
type Converter interface {
	Convert(ctx context.Context, req conversion.Request) (*conversion.Artifact, error)
}

// ConversionStore reads the conversion audit log.
type ConversionStore interface {
	List(ctx context.Context, status string, limit int) ([]models.Conversion, error)
	Get(ctx context.Context, id string) (*models.Conversion, error)
}

// StatsSource reads conversion counters.
type StatsSource interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// Deps are the handler dependencies. Conversions, Stats and Archive are
// optional; endpoints that need a missing one answer 503.
type Deps struct {
	Converter       Converter
	Conversions     ConversionStore
	Stats           StatsSource
	Archive         ports.StorageProvider
	HealthChecks    map[string]HealthCheck
	MultipartMemory int64
	Version         string
	Log             *logger.Logger
}

type Handler struct {
	converter       Converter
	conversions     ConversionStore
	stats           StatsSource
	archive         ports.StorageProvider
	checks          map[string]HealthCheck
	multipartMemory int64
	version         string
	log             *logger.Logger
}

func New(d Deps) *Handler {
	if d.MultipartMemory <= 0 {
		d.MultipartMemory = 32 << 20
	}
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return &Handler{
		converter:       d.Converter,
		conversions:     d.Conversions,
		stats:           d.Stats,
		archive:         d.Archive,
		checks:          d.HealthChecks,
		multipartMemory: d.MultipartMemory,
		version:         d.Version,
		log:             d.Log,
	}
}
