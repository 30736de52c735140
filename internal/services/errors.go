package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse         = errors.New("cuesheet parse error")
	ErrTemplate      = errors.New("template error")
	ErrConfiguration = errors.New("configuration error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrEncode        = errors.New("encode error")
	ErrTimeout       = errors.New("timeout")
	ErrCancelled     = errors.New("cancelled")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error invalidates the whole run before any
// encoding starts. Parse, template, and configuration errors mean no
// coherent track model or plan exists.
func Fatal(err error) bool {
	return errors.Is(err, ErrParse) ||
		errors.Is(err, ErrTemplate) ||
		errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
