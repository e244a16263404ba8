package core

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/arnavsurve/dropreport/pkg/httpcall"
	"github.com/arnavsurve/dropreport/pkg/retry"
	"github.com/arnavsurve/dropreport/pkg/types"
)

const responseLogLimit = 1024

// State is a position in the flow state machine.
type State string

const (
	StatePending   State = "pending"
	StateResolving State = "resolving"
	StateExecuting State = "executing"
	StateRetrying  State = "retrying"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateDone      State = "done"
)

// Caller performs one HTTP call. *httpcall.Client implements it.
type Caller interface {
	Call(ctx context.Context, req httpcall.Request) (*httpcall.Response, error)
}

// FlowEngine runs resolved steps strictly in order, one at a time.
type FlowEngine struct {
	Logger      Logger
	Caller      Caller
	Retry       retry.Policy
	ArtifactDir string

	// OnToken, if set, sees every newly extracted token (e.g. to redact it).
	OnToken func(token string)

	// Redact, if set, masks secrets in a response before it is cut to the
	// log limit. A token split by the cut would no longer match downstream.
	Redact func(string) string
}

func NewFlowEngine(logger Logger, caller Caller, policy retry.Policy) *FlowEngine {
	return &FlowEngine{
		Logger: logger,
		Caller: caller,
		Retry:  policy,
	}
}

// Run resolves flow against baseURL and executes it. A missing base address
// fails before any request is sent.
func (e *FlowEngine) Run(ctx context.Context, flow *Flow, baseURL string, shared *SharedContext) (*StepResults, error) {
	e.transition(e.Logger, StatePending, StateResolving)
	steps, err := ResolveFlow(flow.Steps, baseURL)
	if err != nil {
		e.transition(e.Logger, StateResolving, StateFailed)
		return NewStepResults(), err
	}
	return e.ExecuteFlow(ctx, steps, shared)
}

// ExecuteFlow runs steps in declaration order. The first fatal failure stops
// the flow: its error result is recorded and later steps never run. When every
// step succeeds, comma-bearing text results are saved as CSV artifacts.
func (e *FlowEngine) ExecuteFlow(ctx context.Context, steps []ResolvedStep, shared *SharedContext) (*StepResults, error) {
	results := NewStepResults()

	for i, step := range steps {
		execCtx := types.ExecutionContext{
			Step:  step,
			Index: i,
			Logger: e.Logger.Step(step.Name).With().
				Int("step_index", i).
				Logger(),
		}
		logger := execCtx.Logger
		logger.Info().Msgf("Running step %q (%s)", step.Name, step.Method)

		resp, err := e.runStep(ctx, execCtx, shared)
		if err != nil {
			e.transition(logger, StateExecuting, StateFailed)
			logger.Error().Err(err).Msgf("Step %q failed, aborting remaining %d step(s)", step.Name, len(steps)-i-1)
			results.Set(step.Name, types.ErrorResult(err))
			return results, &StepError{Step: step.Name, Index: i, Err: err}
		}

		results.Set(step.Name, types.JSONResult(resp.Value))
		e.extractToken(logger, resp, shared)
		logger.Info().
			Int("status_code", resp.StatusCode).
			Bool("is_text", resp.IsText).
			Str("response", e.responseForLog(resp.Raw)).
			Msg("Stored step response")
		e.transition(logger, StateExecuting, StateSucceeded)
	}

	if err := MaterializeArtifacts(results, e.ArtifactDir, e.Logger); err != nil {
		e.transition(e.Logger, StateSucceeded, StateFailed)
		e.Logger.Error().Err(err).Msg("Failed to persist artifact")
		return results, err
	}

	e.transition(e.Logger, StateSucceeded, StateDone)
	return results, nil
}

func (e *FlowEngine) runStep(ctx context.Context, execCtx types.ExecutionContext, shared *SharedContext) (*httpcall.Response, error) {
	logger := execCtx.Logger

	e.transition(logger, StatePending, StateResolving)
	step := SubstituteStep(execCtx.Step, shared)

	req := httpcall.Request{
		Method:  step.Method,
		URL:     step.URL,
		Params:  step.Params,
		Body:    step.Body,
		Headers: step.Headers,
	}

	policy := e.Retry
	policy.OnRetry = func(state retry.State, err error) {
		e.transition(logger, StateExecuting, StateRetrying)
		logger.Warn().
			Err(err).
			Int("attempt", state.Attempt).
			Dur("elapsed", state.Elapsed).
			Dur("next_delay", state.NextDelay).
			Msgf("[RETRY] attempt %d failed, retrying in %s", state.Attempt, state.NextDelay)
	}

	e.transition(logger, StateResolving, StateExecuting)
	resp, err := retry.Do(ctx, policy, func(ctx context.Context) (*httpcall.Response, error) {
		return e.Caller.Call(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("calling %s %s: %w", req.Method, req.URL, err)
	}
	return resp, nil
}

func (e *FlowEngine) extractToken(logger Logger, resp *httpcall.Response, shared *SharedContext) {
	if resp.IsText {
		logger.Debug().Msg("Response is not JSON, skipping token extraction")
		return
	}

	token, path, found := ExtractToken(resp.Raw)
	if !found || token == "" {
		if _, isObject := resp.Value.(map[string]any); isObject {
			logger.Warn().Err(ErrTokenNotFound).Msg("Token not found in response")
		}
		return
	}

	shared.SetToken(token)
	if e.OnToken != nil {
		e.OnToken(token)
	}
	logger.Info().Str("token_path", path).Msg("Token extracted")
}

func (e *FlowEngine) transition(logger Logger, from, to State) {
	logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("State transition")
}

func (e *FlowEngine) responseForLog(raw []byte) string {
	s := string(raw)
	if e.Redact != nil {
		s = e.Redact(s)
	}
	return truncate(s, responseLogLimit)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
