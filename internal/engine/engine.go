// Package engine drives the external document conversion binary.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// OptStandalone asks the engine for a self-contained output document.
const OptStandalone = "--standalone"

// Engine converts one staged file into another.
//
// A *ConversionError means the engine ran and rejected the job. Any other
// error means the engine could not be run at all.
type Engine interface {
	Convert(ctx context.Context, inputPath, fromFormat, toFormat, outputPath string, options []string) error
}

// ConversionError reports a non-zero engine exit.
type ConversionError struct {
	ExitCode int
	Output   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Pandoc died with exitcode \"%d\" during conversion: %s", e.ExitCode, e.Output)
}

// IsConversionError reports whether err carries a *ConversionError.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Pandoc runs the pandoc binary.
type Pandoc struct {
	bin  string
	exec executor
}

var defaultExec = &osExecutor{}

// NewPandoc returns an engine that runs bin, which may be a bare name
// resolved on PATH.
func NewPandoc(bin string) *Pandoc {
	return newPandoc(bin, defaultExec)
}

func newPandoc(bin string, exec executor) *Pandoc {
	if bin == "" {
		bin = "pandoc"
	}
	return &Pandoc{bin: bin, exec: exec}
}

// Convert runs one pandoc invocation. For pdf output no --to is passed; pandoc
// picks the pdf writer from the output file extension.
func (p *Pandoc) Convert(ctx context.Context, inputPath, fromFormat, toFormat, outputPath string, options []string) error {
	bin, err := p.exec.LookPath(p.bin)
	if err != nil {
		return fmt.Errorf("pandoc not found: %w", err)
	}

	_, stderr, err := p.exec.Run(ctx, bin, convertArgs(inputPath, fromFormat, toFormat, outputPath, options))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ConversionError{
				ExitCode: exitErr.ExitCode(),
				Output:   strings.TrimSpace(string(stderr)),
			}
		}
		return fmt.Errorf("running %s: %w", p.bin, err)
	}
	return nil
}

// Version returns the first line of `pandoc --version`.
func (p *Pandoc) Version(ctx context.Context) (string, error) {
	bin, err := p.exec.LookPath(p.bin)
	if err != nil {
		return "", fmt.Errorf("pandoc not found: %w", err)
	}

	stdout, stderr, err := p.exec.Run(ctx, bin, []string{"--version"})
	if err != nil {
		return "", fmt.Errorf("%s --version: %w: %s", p.bin, err, strings.TrimSpace(string(stderr)))
	}

	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}

func convertArgs(inputPath, fromFormat, toFormat, outputPath string, options []string) []string {
	args := make([]string, 0, 4+len(options))
	args = append(args, inputPath, "--from="+fromFormat)
	if toFormat != "pdf" {
		args = append(args, "--to="+toFormat)
	}
	args = append(args, "--output="+outputPath)
	args = append(args, options...)
	return args
}
