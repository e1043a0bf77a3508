package extract

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Decoder turns a local file into plain text.
type Decoder interface {
	Decode(ctx context.Context, path string) (string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, path string) (string, error)

func (f DecoderFunc) Decode(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Registry dispatches a Format to its Decoder.
type Registry struct {
	decoders map[Format]Decoder
	fallback Decoder
	timeout  time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithDecoder installs or replaces the decoder for f.
func WithDecoder(f Format, d Decoder) Option {
	return func(r *Registry) {
		if f == FormatFallback {
			r.fallback = d
			return
		}
		r.decoders[f] = d
	}
}

// WithTimeout bounds every Decode call.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// NewRegistry returns a Registry with the PDF, DOCX, DOC and HTML fallback decoders.
// The DOC decoder depends on a converter found on PATH at construction time.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		decoders: map[Format]Decoder{
			FormatPDF:  DecoderFunc(decodePDF),
			FormatDOCX: DecoderFunc(decodeDOCX),
			FormatDOC:  LookupDOCDecoder(),
		},
		fallback: DecoderFunc(decodeHTML),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Decode runs the decoder registered for f against path.
func (r *Registry) Decode(ctx context.Context, f Format, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d, ok := r.decoders[f]
	if !ok {
		if f.Known() || r.fallback == nil {
			return "", &DecodeError{Format: f, Err: ErrUnsupportedFormat}
		}
		d = r.fallback
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := d.Decode(ctx, path)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			return "", err
		}
		return "", &DecodeError{Format: f, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", &DecodeError{Format: f, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return text, nil
}

// Available reports whether f has a usable decoder.
func (r *Registry) Available(f Format) bool {
	d, ok := r.decoders[f]
	if !ok {
		return !f.Known() && r.fallback != nil
	}
	_, unavailable := d.(UnavailableDecoder)
	return !unavailable
}
