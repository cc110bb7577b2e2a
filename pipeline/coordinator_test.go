package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource delivers a fixed slice of ints. failAfter >= 0 simulates a
// mid-stream read error after that many successful reads.
type fakeSource struct {
	items     []int
	failOpen  bool
	failAfter int
	infinite  bool

	pos    int
	opened bool
	closed atomic.Bool
}

func newFakeSource(items ...int) *fakeSource {
	return &fakeSource{items: items, failAfter: -1}
}

func (s *fakeSource) Open() error {
	if s.failOpen {
		return errors.New("could not open the video source")
	}
	s.opened = true
	return nil
}

func (s *fakeSource) ReadNext() (int, bool) {
	if s.infinite {
		s.pos++
		return s.pos, true
	}
	if s.failAfter >= 0 && s.pos >= s.failAfter {
		return 0, false
	}
	if s.pos >= len(s.items) {
		return 0, false
	}
	v := s.items[s.pos]
	s.pos++
	return v, true
}

func (s *fakeSource) Close() error {
	s.closed.Store(true)
	return nil
}

// fakeSink records written items in arrival order.
type fakeSink struct {
	failOpen bool

	written []int
	opened  bool
	closed  atomic.Bool
}

func (s *fakeSink) Open() error {
	if s.failOpen {
		return errors.New("could not open the video sink")
	}
	s.opened = true
	return nil
}

func (s *fakeSink) Write(item int) error {
	s.written = append(s.written, item)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed.Store(true)
	return nil
}

type fnTransformer struct {
	fn func(int) (int, error)
}

func (t fnTransformer) Transform(item int) (int, error) {
	return t.fn(item)
}

func identity() fnTransformer {
	return fnTransformer{fn: func(item int) (int, error) { return item, nil }}
}

func runPipeline(t *testing.T, src *fakeSource, transformer Transformer[int], snk *fakeSink) error {
	t.Helper()

	type result struct {
		err error
	}
	done := make(chan result)
	go func() {
		_, err := Run[int](context.Background(), src, transformer, snk, nil, nil, nil)
		done <- result{err: err}
	}()

	select {
	case r := <-done:
		return r.err
	case <-time.After(5 * time.Second):
		t.Fatal("Pipeline did not terminate")
		return nil
	}
}

// TestPipelineOrdering verifies the sink observes frames in exact
// capture order with an identity transformation.
func TestPipelineOrdering(t *testing.T) {
	src := newFakeSource(10, 20, 30)
	snk := &fakeSink{}

	if err := runPipeline(t, src, identity(), snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	want := []int{10, 20, 30}
	if len(snk.written) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(snk.written))
	}
	for i, v := range want {
		if snk.written[i] != v {
			t.Errorf("Frame %d: expected %d, got %d", i, v, snk.written[i])
		}
	}
}

// TestPipelineEmptySource verifies a zero-frame source terminates the
// pipeline without blocking and without output.
func TestPipelineEmptySource(t *testing.T) {
	src := newFakeSource()
	snk := &fakeSink{}

	if err := runPipeline(t, src, identity(), snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if len(snk.written) != 0 {
		t.Errorf("Expected no frames, got %d", len(snk.written))
	}
}

// TestPipelineSourceOpenFails verifies a fatal report before any stage
// starts: the sink is never opened and nothing is written.
func TestPipelineSourceOpenFails(t *testing.T) {
	src := newFakeSource(1, 2, 3)
	src.failOpen = true
	snk := &fakeSink{}

	err := runPipeline(t, src, identity(), snk)
	if err == nil {
		t.Fatal("Expected an open error")
	}

	if snk.opened {
		t.Error("Sink was opened even though the source failed to open")
	}
	if len(snk.written) != 0 {
		t.Errorf("Expected no frames, got %d", len(snk.written))
	}
}

// TestPipelineSinkOpenFails verifies the source is released when the
// sink cannot be opened.
func TestPipelineSinkOpenFails(t *testing.T) {
	src := newFakeSource(1, 2, 3)
	snk := &fakeSink{failOpen: true}

	err := runPipeline(t, src, identity(), snk)
	if err == nil {
		t.Fatal("Expected an open error")
	}

	if !src.closed.Load() {
		t.Error("Source was not closed after the sink failed to open")
	}
}

// TestPipelineReadError verifies a mid-stream read error behaves like
// end of stream: frames already read still flow through.
func TestPipelineReadError(t *testing.T) {
	src := newFakeSource(1, 2, 3, 4, 5)
	src.failAfter = 2
	snk := &fakeSink{}

	if err := runPipeline(t, src, identity(), snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	want := []int{1, 2}
	if len(snk.written) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(snk.written))
	}
	for i, v := range want {
		if snk.written[i] != v {
			t.Errorf("Frame %d: expected %d, got %d", i, v, snk.written[i])
		}
	}
}

// TestPipelineNoLoss verifies N source frames produce exactly N
// transformed frames in ascending order.
func TestPipelineNoLoss(t *testing.T) {
	const n = 500
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	src := newFakeSource(items...)
	snk := &fakeSink{}
	doubler := fnTransformer{fn: func(item int) (int, error) { return item * 2, nil }}

	if err := runPipeline(t, src, doubler, snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if len(snk.written) != n {
		t.Fatalf("Expected %d frames, got %d", n, len(snk.written))
	}
	for i, v := range snk.written {
		if v != i*2 {
			t.Errorf("Frame %d: expected %d, got %d", i, i*2, v)
		}
	}
}

// TestPipelineDeterministic verifies two runs over the same source and
// transformation yield identical outputs.
func TestPipelineDeterministic(t *testing.T) {
	run := func() []int {
		src := newFakeSource(7, 3, 9, 1, 5, 8, 2)
		snk := &fakeSink{}
		if err := runPipeline(t, src, identity(), snk); err != nil {
			t.Fatalf("Pipeline failed: %v", err)
		}
		return snk.written
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("Run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Frame %d differs: %d vs %d", i, first[i], second[i])
		}
	}
}

// TestPipelineTransformError verifies failing frames are skipped while
// the rest flow through in order.
func TestPipelineTransformError(t *testing.T) {
	src := newFakeSource(1, 2, 3, 4, 5, 6)
	snk := &fakeSink{}
	flaky := fnTransformer{fn: func(item int) (int, error) {
		if item%3 == 0 {
			return 0, errors.New("inference failed")
		}
		return item, nil
	}}

	if err := runPipeline(t, src, flaky, snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	want := []int{1, 2, 4, 5}
	if len(snk.written) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(snk.written))
	}
	for i, v := range want {
		if snk.written[i] != v {
			t.Errorf("Frame %d: expected %d, got %d", i, v, snk.written[i])
		}
	}
}

// TestPipelineResourcesReleased verifies the coordinator closes the
// source and the sink only after all stages have joined.
func TestPipelineResourcesReleased(t *testing.T) {
	src := newFakeSource(1, 2, 3)
	snk := &fakeSink{}

	if err := runPipeline(t, src, identity(), snk); err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if !src.closed.Load() {
		t.Error("Source was not closed")
	}
	if !snk.closed.Load() {
		t.Error("Sink was not closed")
	}
}

// TestPipelineCancellation verifies cancelling the context unblocks an
// endless pipeline and releases resources.
func TestPipelineCancellation(t *testing.T) {
	src := newFakeSource()
	src.infinite = true
	snk := &fakeSink{}

	canxCtx, canxFn := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		_, err := Run[int](canxCtx, src, identity(), snk, nil, nil, nil)
		done <- err
	}()

	// Let some frames flow, then pull the plug
	time.Sleep(100 * time.Millisecond)
	canxFn()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Pipeline failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Pipeline did not terminate after cancellation")
	}

	if !src.closed.Load() {
		t.Error("Source was not closed after cancellation")
	}
	if !snk.closed.Load() {
		t.Error("Sink was not closed after cancellation")
	}
}

// TestPipelineStatsCounts verifies the aggregate stats reflect the
// frames read and written.
func TestPipelineStatsCounts(t *testing.T) {
	src := newFakeSource(1, 2, 3, 4)
	snk := &fakeSink{}

	done := make(chan struct{})
	var stats struct {
		read    int
		written int
	}
	go func() {
		defer close(done)
		s, err := Run[int](context.Background(), src, identity(), snk, nil, nil, nil)
		if err != nil {
			t.Errorf("Pipeline failed: %v", err)
		}
		stats.read = s.FramesRead
		stats.written = s.FramesWritten
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Pipeline did not terminate")
	}

	if stats.read != 4 {
		t.Errorf("Expected 4 frames read, got %d", stats.read)
	}
	if stats.written != 4 {
		t.Errorf("Expected 4 frames written, got %d", stats.written)
	}
}
