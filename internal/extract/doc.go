package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// docConverters are tried in order when looking for a legacy .doc converter.
var docConverters = []string{"antiword", "catdoc"}

var lookPath = exec.LookPath

// CommandDecoder runs an external converter that prints plain text on stdout.
type CommandDecoder struct {
	Path string
	Args []string
}

func (d CommandDecoder) Decode(ctx context.Context, path string) (string, error) {
	args := append(append([]string(nil), d.Args...), path)
	cmd := exec.CommandContext(ctx, d.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %w: %s", d.Path, err, msg)
		}
		return "", fmt.Errorf("%s: %w", d.Path, err)
	}
	return stdout.String(), nil
}

// UnavailableDecoder stands in for a format whose converter is missing.
type UnavailableDecoder struct{}

func (UnavailableDecoder) Decode(context.Context, string) (string, error) {
	return "", ErrUnsupportedPlatform
}

// LookupDOCDecoder returns a decoder backed by the first converter on PATH,
// or one that always fails with ErrUnsupportedPlatform.
func LookupDOCDecoder() Decoder {
	for _, name := range docConverters {
		if p, err := lookPath(name); err == nil {
			return CommandDecoder{Path: p}
		}
	}
	return UnavailableDecoder{}
}
