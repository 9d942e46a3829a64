package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLocked means another run holds the vault lock.
	ErrLocked = errors.New("another run is in progress")
	// ErrConfiguration marks unusable pipeline configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider marks a failed provider call.
	ErrProvider = errors.New("provider error")
	// ErrVault marks a failed vault operation.
	ErrVault = errors.New("vault error")
)

// Wrap tags an error with one of the sentinel markers above plus stage
// context, so callers can classify failures with errors.Is while logs keep
// the full chain.
func Wrap(marker error, stage, message string, err error) error {
	detail := buildDetail(stage, message)
	if marker == nil {
		marker = ErrProvider
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, message string) string {
	parts := make([]string, 0, 2)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
