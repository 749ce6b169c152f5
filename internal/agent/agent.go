// Package agent implements the text transformations the agent sells
package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which transformation a job runs
type Mode string

const (
	// ModeReverse reverses the submitted text
	ModeReverse Mode = "reverse"
	// ModeEcho returns the submitted text unchanged
	ModeEcho Mode = "echo"
)

const (
	// ReversePrefix labels the output of ModeReverse
	ReversePrefix = "Reversed: "
	// EchoPrefix labels the output of ModeEcho
	EchoPrefix = "Echo: "

	// TextField is the input key holding the text to transform
	TextField = "text"
	// InputStringField is the MIP-003 schema id accepted as a fallback for TextField
	InputStringField = "input_string"
)

// ErrInvalidInput is returned when the input carries no usable text
var ErrInvalidInput = errors.New("invalid input")

// ParseMode converts a configured mode name into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReverse:
		return ModeReverse, nil
	case ModeEcho:
		return ModeEcho, nil
	default:
		return "", fmt.Errorf("unsupported agent mode %q", s)
	}
}

// Reverse returns text with its characters in reverse order, prefixed with ReversePrefix
func Reverse(text string) string {
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return ReversePrefix + string(runes)
}

// Echo returns text prefixed with EchoPrefix
func Echo(text string) string {
	return EchoPrefix + text
}

// ExtractText returns the text to transform from a job input.
// The "text" field wins over "input_string"; both must be non-empty strings.
func ExtractText(input map[string]interface{}) (string, error) {
	for _, key := range []string{TextField, InputStringField} {
		raw, ok := input[key]
		if !ok {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("%w: field %q must be a string", ErrInvalidInput, key)
		}
		if text == "" {
			return "", fmt.Errorf("%w: field %q must not be empty", ErrInvalidInput, key)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: missing %q field", ErrInvalidInput, TextField)
}

// Transform extracts the text from input and applies the transformation selected by mode
func Transform(mode Mode, input map[string]interface{}) (string, error) {
	text, err := ExtractText(input)
	if err != nil {
		return "", err
	}
	switch mode {
	case ModeEcho:
		return Echo(text), nil
	case ModeReverse, "":
		return Reverse(text), nil
	default:
		return "", fmt.Errorf("unsupported agent mode %q", mode)
	}
}
