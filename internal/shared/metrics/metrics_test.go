package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncBatches()
	IncItemCompleted()
	IncItemFailed()
	ObserveItemDurationMs(300)
	ObserveItemDurationMs(-5)

	out := Render()
	for _, want := range []string{
		"# TYPE extraction_batches_total counter",
		"# TYPE extraction_items_completed_total counter",
		"# TYPE extraction_item_duration_ms histogram",
		`extraction_item_duration_ms_bucket{le="+Inf"}`,
		"extraction_item_duration_ms_count",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "h", "test", snap)
	if !strings.Contains(buf.String(), `h_bucket{le="100"} 2`) {
		t.Fatalf("expected cumulative le=100 bucket of 2:\n%s", buf.String())
	}
}
