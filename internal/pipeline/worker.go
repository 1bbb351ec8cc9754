package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/entweave/chunkd/internal/chunker"
)

// Worker processes one batch job at a time.
type Worker struct {
	engine *chunker.Engine
	log    *slog.Logger
}

func NewWorker(engine *chunker.Engine, log *slog.Logger) *Worker {
	return &Worker{engine: engine, log: log}
}

// Process chunks every document in the job. Individual document
// failures are recorded and the rest of the batch continues; the job
// fails only when nothing succeeded.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	docs := job.Documents()
	job.SetStatus(StatusChunking, "chunking")

	succeeded := 0
	for i, doc := range docs {
		if ctx.Err() != nil {
			job.AddError("shutdown before batch finished")
			job.SetStatus(StatusFailed, "chunking")
			return
		}

		if strings.TrimSpace(doc.Text) == "" {
			job.AddError(fmt.Sprintf("document %d (%s): empty text", i, doc.DocumentID))
			continue
		}

		chunks, warnings := w.engine.ChunkDocument(doc.Text, doc.Entities)
		job.AddResult(DocumentResult{
			DocumentID: doc.DocumentID,
			Chunks:     chunks,
			Warnings:   warnings,
		})
		succeeded++

		log.Debug("document chunked",
			"doc_id", doc.DocumentID,
			"chunks", len(chunks),
			"warnings", len(warnings))
	}

	if succeeded == 0 {
		job.SetStatus(StatusFailed, "chunking")
		log.Error("batch failed", "documents", len(docs))
		return
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("batch completed", "documents", len(docs), "succeeded", succeeded)
}
