package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	DefaultMaxSourceSize = 256 * 1024 // 256KB - submitted source size limit
	MaxIDLength          = 128
)

// ErrEmptySource reports a submission with nothing but whitespace
var ErrEmptySource = errors.New("code is required")

// SizeError reports a payload over its limit
type SizeError struct {
	Field string
	Size  int
	Max   int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s size %d bytes exceeds maximum %d bytes", e.Field, e.Size, e.Max)
}

// ValidateSource checks a submitted script. maxSize <= 0 means
// DefaultMaxSourceSize.
func ValidateSource(code string, maxSize int) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxSourceSize
	}
	if strings.TrimSpace(code) == "" {
		return ErrEmptySource
	}
	if len(code) > maxSize {
		return &SizeError{Field: "code", Size: len(code), Max: maxSize}
	}
	if !utf8.ValidString(code) {
		return fmt.Errorf("code must be valid UTF-8")
	}
	return nil
}

// IsSizeError reports whether err is a *SizeError
func IsSizeError(err error) bool {
	var se *SizeError
	return errors.As(err, &se)
}
