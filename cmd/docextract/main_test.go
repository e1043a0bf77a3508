package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "docextract-backend/cmd/docextract"
	"docextract-backend/internal/extract/extracttest"
)

func TestRun_HelpListsCommands(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)

	for _, cmd := range []string{"decode", "formats"} {
		assert.Contains(t, stdout.String(), cmd)
	}
}

func TestRun_NoArgs(t *testing.T) {
	t.Parallel()

	err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_DecodeDOCX(t *testing.T) {
	t.Parallel()

	path := extracttest.WriteFile(t, t.TempDir(), "a.docx", extracttest.DOCX("first", "second"))
	stdout := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"decode", path}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", stdout.String())
}

func TestRun_DecodeJSONReportsFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := extracttest.WriteFile(t, dir, "good.docx", extracttest.DOCX("ok"))
	bad := extracttest.WriteFile(t, dir, "bad.pdf", []byte("not a pdf"))
	stdout := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"decode", "--json", good, bad}, stdout, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "ok\n", first["text"])
	assert.Equal(t, "pdf", second["format"])
	assert.NotEmpty(t, second["error"])
}

func TestRun_Formats(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(), []string{"formats"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "pdf")
	assert.Contains(t, stdout.String(), "available")
}
