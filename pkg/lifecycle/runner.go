// Package lifecycle drives a configured encoding job to completion: it
// submits the start request and polls the status endpoint until the job
// reaches a terminal state, gives up, or the context ends.
package lifecycle

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/api"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/errors"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/logger"
	"github.com/ivi-42/bitmovin-api-sdk-example/pkg/progress"
)

// StatusAPI is the slice of the encoding service client the runner needs.
// *api.Client satisfies it.
type StatusAPI interface {
	StartEncoding(ctx context.Context, encodingID string) error
	EncodingStatus(ctx context.Context, encodingID string) (*api.Task, error)
}

// Outcome classifies how a run ended.
type Outcome int

const (
	// Finished means the job reached the FINISHED state.
	Finished Outcome = iota
	// Failed means the job reached the ERROR state.
	Failed
	// TimedOut means the poll budget (attempts or deadline) ran out before
	// the job reached a terminal state.
	TimedOut
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result describes how a run ended. Remote job failure and poll exhaustion
// are reported here rather than through Run's error return, which is reserved
// for transport-level problems.
type Result struct {
	// Outcome classifies the run.
	Outcome Outcome
	// Status is the last status the service reported.
	Status api.Status
	// Progress is the last progress percentage the service reported.
	Progress int
	// Polls is the number of status requests issued.
	Polls int
	// ErrorMessages holds the texts of the job's ERROR-typed messages when
	// Outcome is Failed.
	ErrorMessages []string
}

// Err converts a non-successful Result into a StructuredError, or nil for a
// finished run.
func (r Result) Err() error {
	switch r.Outcome {
	case Failed:
		return errors.New(errors.JobError, "Encoding failed",
			strings.Join(r.ErrorMessages, "; "), errors.ErrJobFailed)
	case TimedOut:
		return errors.New(errors.TimeoutError, "Encoding did not finish in time",
			string(r.Status), errors.ErrPollAttemptsExhausted)
	default:
		return nil
	}
}

// Options configures a Runner.
type Options struct {
	// PollInterval is the delay before the first status request and the base
	// delay between subsequent ones. Defaults to 5 seconds, the service's
	// recommended poll rate.
	PollInterval time.Duration
	// MaxInterval caps the exponential backoff of the poll delay. Defaults to
	// six times PollInterval.
	MaxInterval time.Duration
	// MaxAttempts bounds the number of status requests. 0 means unbounded.
	MaxAttempts int
	// Timeout bounds the total run duration. 0 means unbounded.
	Timeout time.Duration
	// Progress optionally renders the job's percent progress.
	Progress progress.Reporter
	// Logger receives per-poll status logs. Defaults to the standard logger.
	Logger logger.Logger
}

// Runner polls one encoding job to a terminal state.
type Runner struct {
	client StatusAPI
	opts   Options
	logger logger.Logger
}

// New creates a Runner, applying option defaults.
func New(client StatusAPI, opts Options) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 6 * opts.PollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger()
	}
	return &Runner{client: client, opts: opts, logger: opts.Logger}
}

// Run starts the encoding, then polls its status until it reaches a terminal
// state. Between polls it waits the current interval, doubling it up to
// MaxInterval. FINISHED yields a Finished result; ERROR yields a Failed
// result carrying the job's error message texts; exhausting MaxAttempts or
// Timeout yields a TimedOut result. The returned error is non-nil only for
// transport failures or context cancellation.
func (r *Runner) Run(ctx context.Context, encodingID string) (Result, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	if err := r.client.StartEncoding(ctx, encodingID); err != nil {
		return Result{}, err
	}
	r.logger.Info("Encoding started", "lifecycle", map[string]interface{}{
		"encoding_id": encodingID,
	})

	if r.opts.Progress != nil {
		r.opts.Progress.Start(100)
	}

	result := Result{}
	interval := r.opts.PollInterval
	for {
		if err := r.wait(ctx, interval); err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) {
				result.Outcome = TimedOut
				return result, nil
			}
			return result, errors.Wrap(err, errors.APIError, "Polling interrupted", errors.ErrAPIRequestFailed)
		}

		task, err := r.client.EncodingStatus(ctx, encodingID)
		if err != nil {
			return result, err
		}
		result.Polls++
		result.Status = task.Status
		result.Progress = task.Progress

		r.logger.Info("Encoding status", "lifecycle", map[string]interface{}{
			"encoding_id": encodingID,
			"status":      string(task.Status),
			"progress":    task.Progress,
		})
		if r.opts.Progress != nil {
			r.opts.Progress.Update(int64(task.Progress), "encoding", "Waiting for encoding to finish")
		}

		switch {
		case task.Status == api.StatusFinished:
			if r.opts.Progress != nil {
				r.opts.Progress.Complete()
			}
			r.logger.Info("Encoding finished successfully", "lifecycle", map[string]interface{}{
				"encoding_id": encodingID,
			})
			result.Outcome = Finished
			return result, nil

		case task.Status.Terminal():
			result.Outcome = Failed
			result.ErrorMessages = task.ErrorMessages()
			for _, text := range result.ErrorMessages {
				r.logger.Error(text, "lifecycle", map[string]interface{}{
					"encoding_id": encodingID,
				})
			}
			return result, nil
		}

		if r.opts.MaxAttempts > 0 && result.Polls >= r.opts.MaxAttempts {
			result.Outcome = TimedOut
			r.logger.Warn("Poll attempts exhausted", "lifecycle", map[string]interface{}{
				"encoding_id": encodingID,
				"attempts":    result.Polls,
				"status":      string(result.Status),
			})
			return result, nil
		}

		interval *= 2
		if interval > r.opts.MaxInterval {
			interval = r.opts.MaxInterval
		}
	}
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
