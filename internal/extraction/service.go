// Package extraction runs batches of documents through fetch, decode and persist.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docextract-backend/internal/documents"
	"docextract-backend/internal/extract"
	"docextract-backend/internal/notify"
	"docextract-backend/internal/shared/metrics"
	"docextract-backend/internal/shared/storage/object"
	"docextract-backend/internal/shared/telemetry"
	"docextract-backend/internal/shared/util"
	"docextract-backend/internal/users"
)

const (
	NotificationSubject = "Document Extraction Completed"

	defaultNotifyTimeout = 30 * time.Second
)

// Fetcher downloads a URL into destDir and returns the local path.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (string, error)
}

// Decoder turns a local file of the given format into text.
type Decoder interface {
	Decode(ctx context.Context, f extract.Format, path string) (string, error)
}

// Recorder persists one document per processed item.
type Recorder interface {
	Record(ctx context.Context, doc documents.Document) (documents.Document, error)
}

// Result is the outcome of one input, reported in input order.
// TaskID is 0 when the input was rejected before a document was written.
type Result struct {
	TaskID        int64   `json:"task_id"`
	Status        string  `json:"status"`
	ExtractedText *string `json:"extracted_text"`
	Input         string  `json:"input"`
	Error         string  `json:"error,omitempty"`
}

// Service orchestrates a batch.
type Service struct {
	Fetcher   Fetcher
	Decoder   Decoder
	Documents Recorder
	Notifier  notify.Notifier
	// Archive receives a copy of every extracted text when set.
	Archive object.ObjectStore

	StagingDir     string
	Concurrency    int
	NotifyRequired bool
	NotifyTimeout  time.Duration
}

// NotificationBody renders the completion message for email.
func NotificationBody(email string) string {
	return "Dear " + email + ",\n\nYour document extraction has been successfully completed.\n\nThanks & regards"
}

// ProcessBatch fetches, decodes and persists every input for acc, then notifies once.
//
// Items that cannot be fetched or decoded are persisted as failed documents and the
// batch continues. Inputs that are neither URLs nor local files, and local files of an
// unsupported format, produce a failed result without a document. A persistence error or cancellation stops the batch; documents
// already written stay written.
func (s *Service) ProcessBatch(ctx context.Context, acc users.Account, inputs []string) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	metrics.IncBatches()
	start := time.Now()

	items := make([]*item, len(inputs))
	ready := make([]chan struct{}, len(inputs))
	for i, in := range inputs {
		items[i] = &item{index: i, input: in, stage: StageClassifying}
		ready[i] = make(chan struct{})
	}

	prepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(prepCtx)
	g.SetLimit(s.concurrency())
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i := range items {
			it, done := items[i], ready[i]
			g.Go(func() error {
				defer close(done)
				s.prepare(gctx, it)
				return nil
			})
		}
	}()

	defer func() {
		<-launched
		_ = g.Wait()
		for _, it := range items {
			s.cleanup(it)
		}
	}()

	results := make([]Result, 0, len(items))
	for i, it := range items {
		select {
		case <-ready[i]:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.persist(ctx, acc, it)
		if err != nil {
			cancel()
			telemetry.Error("extraction.batch", map[string]any{
				"user_id":    acc.ID,
				"batch_size": len(items),
				"persisted":  i,
				"error":      err.Error(),
			})
			return nil, err
		}
		s.cleanup(it)
		results = append(results, res)
	}

	if err := s.notify(ctx, acc.Email); err != nil {
		return nil, err
	}

	telemetry.Info("extraction.batch", map[string]any{
		"user_id":     acc.ID,
		"batch_size":  len(items),
		"failed":      countFailed(results),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return results, nil
}

// prepare classifies, resolves and decodes one item. It never returns an error;
// failures are recorded on the item.
func (s *Service) prepare(ctx context.Context, it *item) {
	start := time.Now()
	defer func() {
		metrics.ObserveItemDurationMs(metrics.SinceMillis(start))
	}()

	kind, err := classify(it.input)
	if err != nil {
		it.fail(err)
		return
	}
	it.kind = kind
	it.stage = StageResolving

	input := strings.TrimSpace(it.input)
	switch kind {
	case sourceRemote:
		dir := filepath.Join(s.StagingDir, uuid.NewString())
		it.staging = dir
		local, err := s.Fetcher.Fetch(ctx, input, dir)
		if err != nil {
			it.fail(err)
			return
		}
		it.resolved = local
	default:
		it.resolved = input
	}

	it.format = extract.DetectFormat(it.resolved)
	// Only fetched content may go through the HTML fallback.
	if kind == sourceLocal && !it.format.Known() {
		it.fail(fmt.Errorf("%w: %w: %q", ErrInvalidInput, extract.ErrUnsupportedFormat, input))
		return
	}
	it.stage = StageDecoding
	text, err := s.Decoder.Decode(ctx, it.format, it.resolved)
	if err != nil {
		it.fail(err)
		return
	}
	it.text = &text
}

func (s *Service) persist(ctx context.Context, acc users.Account, it *item) (Result, error) {
	res := Result{Input: it.input}
	if it.stage == StageFailed && errors.Is(it.err, ErrInvalidInput) {
		metrics.IncItemFailed()
		s.logItem(acc, it, 0)
		res.Status = string(documents.StatusFailed)
		res.Error = it.err.Error()
		return res, nil
	}

	doc := documents.Document{
		UserID:   acc.ID,
		FilePath: it.resolved,
		Status:   documents.StatusCompleted,
	}
	// Staged copies are removed after persist, so remote items keep their URL.
	if it.kind == sourceRemote || doc.FilePath == "" {
		doc.FilePath = strings.TrimSpace(it.input)
	}
	if it.format.Known() {
		f := it.format
		doc.Format = &f
	}
	if it.stage == StageFailed {
		doc.Status = documents.StatusFailed
	} else {
		doc.ExtractedText = it.text
	}

	saved, err := s.Documents.Record(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("persist %q: %w", it.input, err)
	}

	res.TaskID = saved.ID
	res.Status = string(saved.Status)
	if saved.Status == documents.StatusFailed {
		metrics.IncItemFailed()
		res.Error = it.err.Error()
	} else {
		it.stage = StagePersisted
		metrics.IncItemCompleted()
		res.ExtractedText = saved.ExtractedText
		s.archive(ctx, acc, saved)
	}
	s.logItem(acc, it, saved.ID)
	return res, nil
}

func (s *Service) archive(ctx context.Context, acc users.Account, doc documents.Document) {
	if s.Archive == nil || doc.ExtractedText == nil {
		return
	}
	key := ArchiveKey(acc.Email, doc.ID)
	if _, err := s.Archive.Put(ctx, key, "text/plain; charset=utf-8", strings.NewReader(*doc.ExtractedText)); err != nil {
		telemetry.Warn("extraction.archive_failed", map[string]any{
			"user_id":     acc.ID,
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
}

// ArchiveKey is the object key for a document's extracted text.
func ArchiveKey(email string, documentID int64) string {
	return path.Join(util.HashUserKey(email), strconv.FormatInt(documentID, 10)+".txt")
}

func (s *Service) notify(ctx context.Context, email string) error {
	if s.Notifier == nil {
		return nil
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	nctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.Notifier.Notify(nctx, email, NotificationSubject, NotificationBody(email))
	if err == nil {
		return nil
	}
	metrics.IncNotifyFailed()
	var nerr *notify.NotifyError
	if !errors.As(err, &nerr) {
		err = &notify.NotifyError{To: email, Err: err}
	}
	if s.NotifyRequired {
		return err
	}
	telemetry.Warn("extraction.notify_failed", map[string]any{
		"to":    email,
		"error": err.Error(),
	})
	return nil
}

func (s *Service) cleanup(it *item) {
	if it.staging == "" {
		return
	}
	if err := os.RemoveAll(it.staging); err != nil {
		telemetry.Warn("extraction.cleanup_failed", map[string]any{
			"dir":   it.staging,
			"error": err.Error(),
		})
		return
	}
	it.staging = ""
}

func (s *Service) concurrency() int {
	if s.Concurrency < 1 {
		return 1
	}
	return s.Concurrency
}

func (s *Service) logItem(acc users.Account, it *item, docID int64) {
	fields := map[string]any{
		"user_id":     acc.ID,
		"index":       it.index,
		"stage":       string(it.stage),
		"format":      it.format.String(),
		"document_id": docID,
	}
	if it.err != nil {
		fields["error"] = it.err.Error()
		telemetry.Warn("extraction.item", fields)
		return
	}
	telemetry.Info("extraction.item", fields)
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == string(documents.StatusFailed) {
			n++
		}
	}
	return n
}
