package pipeline

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/entweave/chunkd/internal/chunker"
	"github.com/entweave/chunkd/internal/config"
)

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := config.Config{
		WorkerCount:  1,
		MaxQueueSize: 1,
		JobTTL:       time.Hour,
	}
	engine := chunker.New(chunker.Config{}, slog.Default())
	return NewOrchestrator(cfg, engine, slog.Default())
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	orch := testOrchestrator(t)
	orch.Start(context.Background())
	orch.Stop()

	job := NewJob([]Document{{DocumentID: "d1", Text: "late arrival"}})
	err := orch.Submit(job)
	if err == nil {
		t.Fatal("expected error submitting to a stopped pipeline")
	}
	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected job status %q, got %q", StatusFailed, got)
	}
}

func TestOrchestrator_StopIsIdempotent(t *testing.T) {
	orch := testOrchestrator(t)
	orch.Start(context.Background())
	orch.Stop()
	// A second Stop must not close the queue again.
	orch.Stop()
}

func TestOrchestrator_QueueFull(t *testing.T) {
	orch := testOrchestrator(t)
	// Not started: nothing drains the single-slot queue.
	first := NewJob(nil)
	if err := orch.Submit(first); err != nil {
		t.Fatalf("first submit should fit the queue: %v", err)
	}
	second := NewJob(nil)
	err := orch.Submit(second)
	if err == nil {
		t.Fatal("expected error when the queue is full")
	}
	if got := second.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected job status %q, got %q", StatusFailed, got)
	}
}
