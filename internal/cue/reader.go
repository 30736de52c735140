package cue

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"hermes/internal/services"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts raw cuesheet bytes to UTF-8. A leading BOM is
// stripped and valid UTF-8 passes through unchanged. Anything else is
// decoded using the declared legacy encoding hint (an IANA charset name),
// or windows-1252 when no hint is given.
func DecodeText(data []byte, encodingHint string) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	hint := strings.TrimSpace(encodingHint)
	if hint == "" {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode windows-1252: %w", err)
		}
		return string(decoded), nil
	}

	enc, err := ianaindex.IANA.Encoding(hint)
	if err != nil || enc == nil {
		return "", services.Wrap(services.ErrConfiguration, "cue", "decode",
			fmt.Sprintf("unknown character encoding %q", hint), nil)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", hint, err)
	}
	return string(decoded), nil
}

// ParseFile reads and parses a cuesheet from disk, applying the encoding
// hint when the file is not valid UTF-8.
func ParseFile(path, encodingHint string) (*CueSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cuesheet %s: %w", path, err)
	}
	text, err := DecodeText(data, encodingHint)
	if err != nil {
		return nil, err
	}
	sheet, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sheet, nil
}
