package audit

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"convertd/internal/conversion"
	"convertd/internal/models"
	"convertd/internal/pkg/logger"
)

type fakeStore struct {
	rows []*models.Conversion
	err  error
}

func (f *fakeStore) Insert(ctx context.Context, c *models.Conversion) error {
	f.rows = append(f.rows, c)
	return f.err
}

func TestFromOutcome(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := FromOutcome(conversion.Outcome{
		ID:             "c1",
		RequestID:      "r1",
		SourceFilename: "report.docx",
		FromFormat:     "docx",
		ToFormat:       "pdf",
		Status:         conversion.StatusSucceeded,
		InputBytes:     10,
		OutputBytes:    20,
		Duration:       1500 * time.Millisecond,
		ArchiveKey:     "conversions/c1/report.pdf",
		CreatedAt:      created,
	})

	if row.Status != "SUCCEEDED" {
		t.Errorf("expected SUCCEEDED, got %s", row.Status)
	}
	if row.DurationMS != 1500 {
		t.Errorf("expected 1500ms, got %d", row.DurationMS)
	}
	if !row.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %s, got %s", created, row.CreatedAt)
	}
	if row.ArchiveKey != "conversions/c1/report.pdf" || row.RequestID != "r1" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestRecorderObserve(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, logger.Discard())

	rec.Observe(context.Background(), conversion.Outcome{ID: "c1", Status: conversion.StatusFailed, ErrorCode: "CONVERSION_FAILED"})

	if len(store.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.rows))
	}
	if store.rows[0].ErrorCode != "CONVERSION_FAILED" {
		t.Errorf("unexpected error code %s", store.rows[0].ErrorCode)
	}
}

func TestRecorderLogsInsertFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	rec := NewRecorder(&fakeStore{err: fmt.Errorf("connection refused")}, log)

	rec.Observe(context.Background(), conversion.Outcome{ID: "c1", Status: conversion.StatusSucceeded})

	if !strings.Contains(buf.String(), "audit insert failed") || !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected insert failure in log, got: %s", buf.String())
	}
}
