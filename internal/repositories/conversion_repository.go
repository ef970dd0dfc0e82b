package repositories

import (
	"context"
	"errors"

	"convertd/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversionNotFound = errors.New("conversion not found")
var ErrConversionExists = errors.New("conversion already recorded")

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id              TEXT PRIMARY KEY,
	request_id      TEXT,
	source_filename TEXT NOT NULL,
	from_format     TEXT NOT NULL,
	to_format       TEXT NOT NULL,
	status          TEXT NOT NULL,
	error_code      TEXT,
	error_text      TEXT,
	input_bytes     BIGINT NOT NULL DEFAULT 0,
	output_bytes    BIGINT NOT NULL DEFAULT 0,
	duration_ms     BIGINT NOT NULL DEFAULT 0,
	archive_key     TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC);
CREATE INDEX IF NOT EXISTS conversions_status_idx ON conversions (status, created_at DESC);
`

const selectColumns = `
	SELECT id, COALESCE(request_id,''), source_filename, from_format, to_format, status,
	       COALESCE(error_code,''), COALESCE(error_text,''), input_bytes, output_bytes,
	       duration_ms, COALESCE(archive_key,''), created_at
	FROM conversions`

type ConversionRepository struct {
	db *pgxpool.Pool
}

func NewConversionRepository(db *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// EnsureSchema creates the conversions table and its indexes if missing.
func (r *ConversionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *ConversionRepository) Insert(ctx context.Context, c *models.Conversion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO conversions (
			id, request_id, source_filename, from_format, to_format, status,
			error_code, error_text, input_bytes, output_bytes, duration_ms, archive_key, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		c.ID, nullIfEmpty(c.RequestID), c.SourceFilename, c.FromFormat, c.ToFormat, c.Status,
		nullIfEmpty(c.ErrorCode), nullIfEmpty(c.ErrorText), c.InputBytes, c.OutputBytes,
		c.DurationMS, nullIfEmpty(c.ArchiveKey), c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConversionExists
		}
		return err
	}
	return nil
}

// List returns the newest conversions first, optionally filtered by status.
// A missing table reads as an empty log.
func (r *ConversionRepository) List(ctx context.Context, status string, limit int) ([]models.Conversion, error) {
	limit = ClampLimit(limit)

	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.Query(ctx, selectColumns+`
			WHERE status=$1
			ORDER BY created_at DESC
			LIMIT $2`, status, limit)
	} else {
		rows, err = r.db.Query(ctx, selectColumns+`
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		if isUndefinedTable(err) {
			return []models.Conversion{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Conversion, 0, limit)
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ConversionRepository) Get(ctx context.Context, id string) (*models.Conversion, error) {
	c, err := scanConversion(r.db.QueryRow(ctx, selectColumns+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, ErrConversionNotFound
		}
		return nil, err
	}
	return c, nil
}

// ClampLimit maps non-positive limits to the default and caps the rest.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func scanConversion(row pgx.Row) (*models.Conversion, error) {
	var c models.Conversion
	err := row.Scan(
		&c.ID,
		&c.RequestID,
		&c.SourceFilename,
		&c.FromFormat,
		&c.ToFormat,
		&c.Status,
		&c.ErrorCode,
		&c.ErrorText,
		&c.InputBytes,
		&c.OutputBytes,
		&c.DurationMS,
		&c.ArchiveKey,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
