// Package audit writes conversion outcomes to the audit log.
package audit

import (
	"context"

	"convertd/internal/conversion"
	"convertd/internal/models"
	"convertd/internal/pkg/logger"
)

// Store persists audit rows.
type Store interface {
	Insert(ctx context.Context, c *models.Conversion) error
}

// Recorder is a conversion.Observer that inserts each outcome into a Store.
type Recorder struct {
	store Store
	log   *logger.Logger
}

func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log.WithComponent("audit")}
}

// Observe records o. Insert failures are logged and dropped.
func (r *Recorder) Observe(ctx context.Context, o conversion.Outcome) {
	if err := r.store.Insert(ctx, FromOutcome(o)); err != nil {
		r.log.LogError(ctx, "audit insert failed", err, "status", string(o.Status))
	}
}

// FromOutcome maps a conversion outcome onto its audit row.
func FromOutcome(o conversion.Outcome) *models.Conversion {
	return &models.Conversion{
		ID:             o.ID,
		RequestID:      o.RequestID,
		SourceFilename: o.SourceFilename,
		FromFormat:     o.FromFormat,
		ToFormat:       o.ToFormat,
		Status:         string(o.Status),
		ErrorCode:      o.ErrorCode,
		ErrorText:      o.ErrorText,
		InputBytes:     o.InputBytes,
		OutputBytes:    o.OutputBytes,
		DurationMS:     o.Duration.Milliseconds(),
		ArchiveKey:     o.ArchiveKey,
		CreatedAt:      o.CreatedAt,
	}
}
