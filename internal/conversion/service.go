// Package conversion turns an uploaded document into the requested format by
// staging it on disk and handing it to an engine.Engine.
package conversion

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"convertd/internal/engine"
	"convertd/internal/pkg/errors"
	"convertd/internal/pkg/logger"
)

// Upload is the document as received.
type Upload struct {
	// Content may already have been partially read; it is rewound first.
	Content  io.ReadSeeker
	Filename string
}

// Request is one conversion call.
type Request struct {
	Upload     Upload
	ToFormat   string
	FromFormat string
}

// Artifact is the converted document.
type Artifact struct {
	Data        []byte
	Filename    string
	ContentType string
}

// DefaultRecordTimeout bounds archiving and each observer once the engine has
// finished.
const DefaultRecordTimeout = 30 * time.Second

// Service runs conversions. It holds no per-request state, so a single
// Service is shared by all requests.
type Service struct {
	engine     engine.Engine
	stagingDir string
	log        *logger.Logger
	observers  []Observer
	archiver   Archiver
	now        func() time.Time

	recordTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithObserver adds an outcome observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// WithArchiver exports successful artifacts through a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithRecordTimeout overrides DefaultRecordTimeout. Non-positive values are
// ignored.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

// NewService creates a Service staging files in stagingDir, or the system
// temp directory when stagingDir is empty.
func NewService(eng engine.Engine, stagingDir string, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine:     eng,
		stagingDir: stagingDir,
		log:        log.WithComponent("conversion"),
		now:        time.Now,

		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert runs one conversion end to end. Both staging files are gone by the
// time it returns, whatever the result.
func (s *Service) Convert(ctx context.Context, req Request) (*Artifact, error) {
	if req.Upload.Content == nil {
		return nil, errors.ValidationField("file", "file is required")
	}

	toFormat := req.ToFormat
	if toFormat == "" {
		toFormat = DefaultTargetFormat
	}
	filename := req.Upload.Filename
	if filename == "" {
		filename = PlaceholderFilename
	}

	fromFormat, err := ResolveSourceFormat(req.FromFormat, filename)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = logger.ContextWithConversionID(ctx, id)
	log := s.log.FromContext(ctx)
	start := s.now()

	log.Debug("conversion started", "filename", filename, "from_format", fromFormat, "to_format", toFormat)

	art, inputBytes, err := s.run(ctx, req.Upload.Content, filename, fromFormat, toFormat)

	outcome := Outcome{
		ID:             id,
		RequestID:      logger.RequestIDFromContext(ctx),
		SourceFilename: filename,
		FromFormat:     fromFormat,
		ToFormat:       toFormat,
		InputBytes:     inputBytes,
		Duration:       s.now().Sub(start),
		CreatedAt:      start.UTC(),
	}

	if err != nil {
		outcome.Status = StatusFailed
		outcome.ErrorCode = string(errors.GetCode(err))
		outcome.ErrorText = truncate(errors.GetMessage(err), maxErrorText)
		log.Info("conversion failed",
			"from_format", fromFormat,
			"to_format", toFormat,
			"code", outcome.ErrorCode,
			"duration_ms", outcome.Duration.Milliseconds(),
		)
		s.observe(ctx, outcome)
		return nil, err
	}

	outcome.Status = StatusSucceeded
	outcome.OutputBytes = int64(len(art.Data))

	if s.archiver != nil {
		outcome.ArchiveKey = s.archive(ctx, id, art)
	}

	log.Info("conversion succeeded",
		"from_format", fromFormat,
		"to_format", toFormat,
		"input_bytes", inputBytes,
		"output_bytes", outcome.OutputBytes,
		"duration_ms", outcome.Duration.Milliseconds(),
	)
	s.observe(ctx, outcome)
	return art, nil
}

func (s *Service) run(ctx context.Context, content io.ReadSeeker, filename, fromFormat, toFormat string) (*Artifact, int64, error) {
	inputPath, inputBytes, err := s.stageInput(content, fromFormat)
	if inputPath != "" {
		defer s.remove(ctx, inputPath)
	}
	if err != nil {
		return nil, inputBytes, err
	}

	outputName := OutputName(filename, toFormat)

	outputPath, err := s.allocate(toFormat)
	if err != nil {
		return nil, inputBytes, err
	}
	defer s.remove(ctx, outputPath)

	// The engine runs to completion even if the caller goes away.
	err = s.engine.Convert(context.WithoutCancel(ctx), inputPath, fromFormat, toFormat, outputPath, []string{engine.OptStandalone})
	if err != nil {
		if engine.IsConversionError(err) {
			return nil, inputBytes, errors.ConversionFailed("conversion.engine", err)
		}
		return nil, inputBytes, errors.Internal("conversion.engine", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, inputBytes, errors.Internal("conversion.read_output", err)
	}

	return &Artifact{
		Data:        data,
		Filename:    outputName,
		ContentType: ContentType(toFormat),
	}, inputBytes, nil
}

// stageInput copies content into a fresh staging file. A non-empty path is
// returned whenever the file was created, even on error.
func (s *Service) stageInput(content io.ReadSeeker, fromFormat string) (string, int64, error) {
	f, err := os.CreateTemp(s.stagingDir, "*."+fromFormat)
	if err != nil {
		return "", 0, errors.Internal("conversion.stage_input", err)
	}
	path := f.Name()

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return path, 0, errors.Internal("conversion.stage_input", err)
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return path, n, errors.Internal("conversion.stage_input", err)
	}
	return path, n, nil
}

func (s *Service) allocate(toFormat string) (string, error) {
	f, err := os.CreateTemp(s.stagingDir, "*."+toFormat)
	if err != nil {
		return "", errors.Internal("conversion.stage_output", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.Internal("conversion.stage_output", err)
	}
	return f.Name(), nil
}

// remove deletes a staging file. Failures are logged and do not affect the
// result of the conversion.
func (s *Service) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.FromContext(ctx).Warn("staging cleanup failed", "path", path, "error", err.Error())
	}
}

// recordContext outlives a disconnected caller but not a hung dependency.
func (s *Service) recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
}

func (s *Service) archive(ctx context.Context, id string, art *Artifact) string {
	actx, cancel := s.recordContext(ctx)
	defer cancel()

	key, err := s.archiver.Archive(actx, id, art)
	if err != nil {
		s.log.FromContext(ctx).Warn("artifact archive failed", "error", err.Error())
		return ""
	}
	return key
}

func (s *Service) observe(ctx context.Context, o Outcome) {
	for _, obs := range s.observers {
		octx, cancel := s.recordContext(ctx)
		obs.Observe(octx, o)
		cancel()
	}
}
