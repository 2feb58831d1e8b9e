package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := backend
	t.Cleanup(func() { backend = orig })
	fb := &fakeBackend{}
	backend = fb
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("dataco", StepLoad, nil, 2*time.Second)
	RecordStep("dataco", StepAggregate, errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters, %d histograms; want 2, 2", len(fb.counters), len(fb.histograms))
	}

	tests := []struct {
		idx        int
		step       string
		status     string
		wantSecond float64
	}{
		{0, StepLoad, "success", 2.0},
		{1, StepAggregate, "failure", 1.5},
	}
	for _, tt := range tests {
		c := fb.counters[tt.idx]
		if c.name != StepTotal || c.value != 1 {
			t.Fatalf("counter[%d] = %#v; want %s delta 1", tt.idx, c, StepTotal)
		}
		if c.labels["job"] != "dataco" || c.labels["step"] != tt.step || c.labels["status"] != tt.status {
			t.Fatalf("counter[%d].labels = %v", tt.idx, c.labels)
		}
		h := fb.histograms[tt.idx]
		if h.name != StepDuration {
			t.Fatalf("hist[%d].name = %q; want %q", tt.idx, h.name, StepDuration)
		}
		if h.value < tt.wantSecond-0.001 || h.value > tt.wantSecond+0.001 {
			t.Fatalf("hist[%d].value = %v; want ~%v", tt.idx, h.value, tt.wantSecond)
		}
	}
}

func TestRecordRowsAndFiles(t *testing.T) {
	fb := install(t)

	RecordRows("dataco", "raw", 3)
	RecordRows("dataco", "skipped", 0) // ignored
	RecordRows("dataco", "clean", 2)
	RecordFiles("dataco-charts", 5)
	RecordFiles("dataco-charts", -1) // ignored

	if len(fb.counters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.counters))
	}
	if c := fb.counters[0]; c.name != RowsTotal || c.value != 3 || c.labels["kind"] != "raw" {
		t.Fatalf("counter[0] = %#v", c)
	}
	if c := fb.counters[1]; c.name != RowsTotal || c.value != 2 || c.labels["kind"] != "clean" {
		t.Fatalf("counter[1] = %#v", c)
	}
	if c := fb.counters[2]; c.name != FilesTotal || c.value != 5 || c.labels["job"] != "dataco-charts" {
		t.Fatalf("counter[2] = %#v", c)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}
