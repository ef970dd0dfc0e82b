package conversion

import (
	"context"
	"time"
)

// Status is the terminal state of a conversion.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// maxErrorText bounds Outcome.ErrorText.
const maxErrorText = 2000

// Outcome describes one finished conversion attempt. It is produced for
// every request that gets past source format resolution.
type Outcome struct {
	ID             string
	RequestID      string
	SourceFilename string
	FromFormat     string
	ToFormat       string
	Status         Status
	ErrorCode      string
	ErrorText      string
	InputBytes     int64
	OutputBytes    int64
	Duration       time.Duration
	ArchiveKey     string
	CreatedAt      time.Time
}

// Observer receives outcomes. ctx is detached from the request but carries
// the service's record timeout, which implementations must honor. A failure
// to record is theirs to log.
type Observer interface {
	Observe(ctx context.Context, o Outcome)
}

// Archiver exports a successful artifact and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, conversionID string, a *Artifact) (string, error)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
