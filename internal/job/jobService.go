package job

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rpillai/docuchat/internal/domain/jobModel"
	"github.com/rpillai/docuchat/internal/metrics"
)

// Service owns the ingestion queue. Handlers enqueue, the worker pool
// consumes, the dispatcher scales on demand.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
	}
}

// EnqueueIngestion queues one ingestion run for a document and returns the
// job for logging. The channel send blocks once the buffer fills, which is
// the backpressure that keeps upload bursts from overwhelming the pool.
// Every ingestion job also signals the dispatcher: ingestion is slow
// external-call work, so scaling up per job (capped at the pool maximum)
// beats queueing behind one busy worker.
func (s *Service) EnqueueIngestion(documentID uint64, traceID string) jobModel.Job {
	job := jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     traceID,
		DocumentID:  documentID,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}

	metrics.IncrementJobsInQueue()
	s.JobChannel <- job

	atomic.AddInt64(&s.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	s.DispatcherChannel <- true

	return job
}
