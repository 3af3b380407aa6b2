package jobs

import (
	"context"

	"go.uber.org/zap"
)

// RateWarmJobName is the name of the exchange rate cache warm job
const RateWarmJobName = "exchange_rate_warm"

// RateWarmer warms the exchange rate cache ahead of read traffic.
// The resolver satisfies this without the job importing the exchange package.
type RateWarmer interface {
	Warm(ctx context.Context)
}

// RateWarmJob periodically refreshes the exchange rate cache so that
// pricing reads rarely have to block on a provider call.
type RateWarmJob struct {
	warmer RateWarmer
	logger *zap.Logger
}

// NewRateWarmJob creates a new exchange rate cache warm job.
func NewRateWarmJob(warmer RateWarmer, logger *zap.Logger) *RateWarmJob {
	return &RateWarmJob{warmer: warmer, logger: logger}
}

// Run executes the warm job. This is called by the scheduler according
// to the configured cron expression. Provider failures are absorbed by
// the warmer; the cached or default rate keeps serving reads.
func (j *RateWarmJob) Run() {
	j.warmer.Warm(context.Background())
}

// RegisterRateWarmJob registers the warm job with the scheduler and runs
// one warm immediately in the background so the first pricing read after
// startup does not pay the provider latency.
func RegisterRateWarmJob(scheduler *Scheduler, warmer RateWarmer, logger *zap.Logger, cronExpr string) error {
	job := NewRateWarmJob(warmer, logger)

	go job.Run()

	return scheduler.AddJob(RateWarmJobName, cronExpr, job.Run)
}
