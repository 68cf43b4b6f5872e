// Package apperr defines the error taxonomy shared across the posting
// pipeline. Handlers map these types onto HTTP statuses; the fleet scheduler
// uses them to decide between aborting a run and recording a tenant failure.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound marks a lookup that matched nothing (tenant, folder, row).
var ErrNotFound = errors.New("not found")

// ErrUnauthorized marks a trigger call failing the bearer/identity check.
var ErrUnauthorized = errors.New("unauthorized")

// DataSourceError wraps a failure to fetch or parse an external table.
// During fleet enumeration it aborts the whole run.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// GenerationParseError reports model output that contained no parseable
// post JSON. Raw holds the response truncated for offline diagnosis.
type GenerationParseError struct {
	Raw string
}

const rawCap = 500

func NewGenerationParseError(raw string) *GenerationParseError {
	if len(raw) > rawCap {
		raw = raw[:rawCap]
	}
	return &GenerationParseError{Raw: raw}
}

func (e *GenerationParseError) Error() string {
	return fmt.Sprintf("no parseable post JSON in model response: %q", e.Raw)
}

// PipelineError tags a tenant-pipeline failure with the stage it came from.
type PipelineError struct {
	Stage  string
	Tenant string
	Err    error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s (tenant %s): %v", e.Stage, e.Tenant, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// RateLimitError is returned when a fixed window is exhausted.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
