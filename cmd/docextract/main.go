// Command docextract decodes local documents with the same decoders the API uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"docextract-backend/internal/extract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewMain().Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// CLI is the kong command tree.
type CLI struct {
	Decode  DecodeCmd  `cmd:"" help:"Decode local files to plain text."`
	Formats FormatsCmd `cmd:"" help:"List formats and whether a decoder is available."`
}

type DecodeCmd struct {
	Paths   []string      `arg:"" name:"path" help:"Files to decode."`
	Timeout time.Duration `help:"Per-file decode timeout." default:"2m"`
	JSON    bool          `name:"json" help:"Emit one JSON object per file."`
}

type FormatsCmd struct{}

// Dependencies are shared with every command.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Registry func(timeout time.Duration) *extract.Registry
}

// Main represents the program.
type Main struct {
	// NewRegistry builds the decoder set; tests replace it.
	NewRegistry func(timeout time.Duration) *extract.Registry
}

func NewMain() *Main {
	return &Main{
		NewRegistry: func(timeout time.Duration) *extract.Registry {
			return extract.NewRegistry(extract.WithTimeout(timeout))
		},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docextract"),
		kong.Description("Extract text from PDF, DOCX, DOC and HTML files"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&Dependencies{
		Ctx:      ctx,
		Stdout:   stdout,
		Stderr:   stderr,
		Registry: m.NewRegistry,
	})
}

type decodeOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run decodes every path. A failing file does not stop the rest; the command
// reports an error at the end if any file failed.
func (c *DecodeCmd) Run(deps *Dependencies) error {
	reg := deps.Registry(c.Timeout)
	enc := json.NewEncoder(deps.Stdout)
	failed := 0
	for _, p := range c.Paths {
		format := extract.DetectFormat(p)
		text, err := reg.Decode(deps.Ctx, format, p)
		out := decodeOutput{Path: p, Format: format.String(), Text: text}
		if err != nil {
			failed++
			out.Text = ""
			out.Error = err.Error()
		}

		if c.JSON {
			if err := enc.Encode(out); err != nil {
				return err
			}
			continue
		}
		if out.Error != "" {
			fmt.Fprintf(deps.Stderr, "%s: %s\n", p, out.Error)
			continue
		}
		if len(c.Paths) > 1 {
			fmt.Fprintf(deps.Stdout, "==> %s <==\n", p)
		}
		fmt.Fprint(deps.Stdout, text)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(c.Paths))
	}
	return nil
}

func (c *FormatsCmd) Run(deps *Dependencies) error {
	reg := deps.Registry(0)
	for _, f := range []extract.Format{extract.FormatPDF, extract.FormatDOCX, extract.FormatDOC, extract.FormatFallback} {
		status := "available"
		if !reg.Available(f) {
			status = "unavailable"
		}
		fmt.Fprintf(deps.Stdout, "%-8s %s\n", f, status)
	}
	return nil
}
