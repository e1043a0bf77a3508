package extraction

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"docextract-backend/internal/extract"
)

var (
	// ErrInvalidInput marks an input that is neither a supported URL nor an existing local
	// file of a supported format.
	ErrInvalidInput = errors.New("invalid file path or URL")
	// ErrEmptyBatch is returned when no inputs were supplied.
	ErrEmptyBatch = errors.New("file_paths_or_urls must not be empty")
)

// Stage is the position of an item in the per-item state machine.
type Stage string

const (
	StageClassifying Stage = "classifying"
	StageResolving   Stage = "resolving"
	StageDecoding    Stage = "decoding"
	StagePersisted   Stage = "persisted"
	StageFailed      Stage = "failed"
)

type sourceKind int

const (
	sourceLocal sourceKind = iota
	sourceRemote
)

var remoteSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// item carries one input through classification, resolution and decoding.
type item struct {
	index    int
	input    string
	kind     sourceKind
	resolved string
	format   extract.Format
	text     *string
	stage    Stage
	err      error
	staging  string
}

func (it *item) fail(err error) {
	it.stage = StageFailed
	it.err = err
}

// classify decides whether input is a remote URL or an existing local file.
func classify(input string) (sourceKind, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidInput
	}
	if u, err := url.Parse(trimmed); err == nil && remoteSchemes[strings.ToLower(u.Scheme)] {
		if u.Host == "" {
			return 0, fmt.Errorf("%w: %q has no host", ErrInvalidInput, input)
		}
		return sourceRemote, nil
	}
	info, err := os.Stat(trimmed)
	if err != nil || !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInput, input)
	}
	return sourceLocal, nil
}
