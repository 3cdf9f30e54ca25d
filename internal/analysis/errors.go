package analysis

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repos for unknown record IDs.
var ErrNotFound = errors.New("not found")

// ErrValidation marks missing or malformed request fields.
var ErrValidation = errors.New("validation failed")

// UnparsableReplyError is raised when no recovery step could extract a
// structured value from the model reply. It carries the original text,
// truncated, for diagnostics. It is caught internally and never surfaced
// raw to callers.
type UnparsableReplyError struct {
	Raw string
}

func (e *UnparsableReplyError) Error() string {
	return fmt.Sprintf("unparsable model reply (%d chars kept)", len(e.Raw))
}

const (
	ErrorCodeValidation        = "validation_error"
	ErrorCodeUnsupportedFormat = "unsupported_format"
	ErrorCodeExtractionFailed  = "extraction_failed"
	ErrorCodeGenerationFailed  = "generation_failed"
	ErrorCodeGenerationTimeout = "generation_timeout"
	ErrorCodeInternal          = "internal_error"
)
