package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/jobModel"
	"github.com/rpillai/docuchat/internal/metrics"
)

func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := logger.With("traceId", job.TraceId, "jobId", job.Id, "documentId", job.DocumentID)
	log.Debug("Processing ingestion job")

	job.Status = jobModel.JobStatusRunning
	job = _ragService.IngestDocument(ctx, job)

	if job.Status != jobModel.JobStatusComplete {
		// the document row carries the failure reason for the user
		log.Warn("Ingestion job failed", "elapsed", time.Since(start))
		return
	}
	log.Debug("Ingestion job complete", "elapsed", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
