package core

import (
	"context"
	"errors"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/pjm0616/flow-jsonschema/internal/ports"
)

const (
	DefaultMaxRetries    = 5
	DefaultRetryInterval = 500 * time.Millisecond
)

// ResilientInvoker wraps a single unreliable oracle invocation with a
// retry/race strategy. The oracle process hangs unpredictably for a
// fraction of calls with identical arguments, so one call cannot be
// trusted to finish in bounded time. The invoker launches redundant
// attempts with exponentially spaced staggering, races every live
// attempt against a per-round timeout, takes the first success, and
// kills everything still running on the way out.
//
// Per-round timeouts grow as RetryInterval*(round+1) so that a slow but
// eventually successful attempt already in flight is not abandoned too
// early, while the wait before launching another attempt stays bounded.
// MaxRetries caps process fan-out.
type ResilientInvoker struct {
	Client        ports.OraclePort
	MaxRetries    int
	RetryInterval time.Duration
}

func NewResilientInvoker(client ports.OraclePort) ResilientInvoker {
	return ResilientInvoker{
		Client:        client,
		MaxRetries:    DefaultMaxRetries,
		RetryInterval: DefaultRetryInterval,
	}
}

type attemptOutcome struct {
	slot   int
	output string
	err    error
}

// Invoke performs one logical oracle call. Killed or timed-out attempts
// are swallowed up to the retry budget; any other attempt failure is
// fatal and propagates immediately. After the final round the invoker
// drains the attempts still in flight for one more interval, then kills
// them and gives up.
func (r ResilientInvoker) Invoke(ctx context.Context, args []string) (string, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	interval := r.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	results := make(chan attemptOutcome, maxRetries)
	live := make(map[int]context.CancelFunc, maxRetries)
	defer func() {
		for slot, cancel := range live {
			log.Debug().Int("attempt", slot).Msg("killing live oracle attempt")
			cancel()
		}
	}()

	pending := 0
	for round := 0; round < maxRetries; round++ {
		slot := round
		attemptCtx, cancel := context.WithCancel(ctx)
		live[slot] = cancel
		pending++
		go func() {
			output, err := r.Client.Invoke(attemptCtx, args)
			results <- attemptOutcome{slot: slot, output: output, err: err}
		}()

		delay := ScheduleDelay(interval * time.Duration(round+1))
		timedOut := false
		for !timedOut && pending > 0 {
			select {
			case outcome := <-results:
				pending--
				r.release(live, outcome.slot)
				if outcome.err == nil {
					delay.Abandon()
					return outcome.output, nil
				}
				if !isRetryableOracleError(outcome.err) {
					delay.Abandon()
					return "", outcome.err
				}
				log.Debug().
					Int("attempt", outcome.slot).
					Err(outcome.err).
					Msg("oracle attempt killed or timed out, retrying")
			case <-delay.C():
				timedOut = true
			case <-ctx.Done():
				delay.Abandon()
				return "", ctx.Err()
			}
		}
		if !timedOut {
			// Every live attempt failed before the timeout; no point
			// waiting out the rest of the round.
			delay.Abandon()
		}
	}

	log.Debug().Int("pending", pending).Msg("oracle retry budget spent, draining live attempts")
	grace := ScheduleDelay(interval)
	defer grace.Abandon()
	for pending > 0 {
		select {
		case outcome := <-results:
			pending--
			r.release(live, outcome.slot)
			if outcome.err == nil {
				return outcome.output, nil
			}
			if !isRetryableOracleError(outcome.err) {
				return "", outcome.err
			}
		case <-grace.C():
			// Out of patience: kill whatever is still running so the
			// drain below terminates.
			for slot, cancel := range live {
				log.Debug().Int("attempt", slot).Msg("killing live oracle attempt")
				cancel()
				delete(live, slot)
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg("oracle invocation retries exhausted")
}

func (r ResilientInvoker) release(live map[int]context.CancelFunc, slot int) {
	if cancel, ok := live[slot]; ok {
		cancel()
		delete(live, slot)
	}
}

// isRetryableOracleError reports whether an attempt failure means the
// process was killed or timed out, which the retry loop swallows. Any
// other failure is treated as fatal by the caller.
func isRetryableOracleError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errbuilder.CodeOf(err) == errbuilder.CodeDeadlineExceeded
}

var _ ports.OracleInvokerPort = ResilientInvoker{}
