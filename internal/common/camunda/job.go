package camunda

import (
	"context"
	"fmt"
	"time"

	"chat-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// ObserveJob records the outcome of one job. errorCode is empty on success.
func ObserveJob(taskType string, start time.Time, errorCode string) {
	metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	if errorCode != "" {
		metrics.WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}
