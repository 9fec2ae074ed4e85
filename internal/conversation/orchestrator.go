package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fmeurer/caseflow/internal/engine"
	"github.com/fmeurer/caseflow/internal/knowledge"
	"github.com/fmeurer/caseflow/internal/observability"
	"github.com/fmeurer/caseflow/internal/policy"
	"github.com/fmeurer/caseflow/internal/routing"
)

// NoEscalationSentinel populates the routing field when the escalation policy
// decides the routing stage does not need to run.
const NoEscalationSentinel = "No escalation needed"

const apologyReply = "I apologize, but I encountered an issue while processing your request. Our team has been notified."

const (
	knowledgeSearchTimeout = 500 * time.Millisecond
	knowledgeSaveTimeout   = 2 * time.Second
	fallbackReply          = "[No reply generated]"
)

// Orchestrator drives one conversation turn through the fixed stage sequence.
// It is the sole recovery boundary for stage failures: any stage error aborts
// the turn and degrades to an apology with status "error". Stages are never
// retried here.
//
// Orchestrator itself is stateless across turns and safe for concurrent use;
// callers must not run two turns against the same *State concurrently (the
// session registry serializes per conversation).
type Orchestrator struct {
	invoker        engine.Invoker
	routes         *routing.Table
	know           knowledge.Store
	metrics        *observability.Metrics
	log            *logrus.Logger
	stageTimeout   time.Duration
	knowledgeLimit int
}

func NewOrchestrator(
	invoker engine.Invoker,
	routes *routing.Table,
	know knowledge.Store,
	metrics *observability.Metrics,
	log *logrus.Logger,
	stageTimeout time.Duration,
	knowledgeLimit int,
) *Orchestrator {
	if stageTimeout <= 0 {
		stageTimeout = 45 * time.Second
	}
	return &Orchestrator{
		invoker:        invoker,
		routes:         routes,
		know:           know,
		metrics:        metrics,
		log:            log,
		stageTimeout:   stageTimeout,
		knowledgeLimit: knowledgeLimit,
	}
}

// RunTurn processes one inbound customer message. The state is updated
// atomically with respect to the turn: per-turn fields are either all from
// this turn or all empty with status "error". Exactly one customer and one
// system message are appended regardless of outcome.
func (o *Orchestrator) RunTurn(ctx context.Context, state *State, message string) TurnResult {
	start := time.Now()

	state.AppendCustomer(message)
	state.beginTurn()

	summary, err := o.invokeStage(ctx, engine.StageSummarize, engine.PromptInputs{
		Conversation: state.FormatHistory(),
	})
	if err != nil {
		return o.failTurn(state, engine.StageSummarize, err, start)
	}

	actions, err := o.invokeStage(ctx, engine.StageExtractActions, engine.PromptInputs{
		Summary: summary,
	})
	if err != nil {
		return o.failTurn(state, engine.StageExtractActions, err, start)
	}

	// Resolution and ETA both depend only on (summary, actions); run them
	// concurrently and join before the escalation decision.
	var (
		resolution, eta string
		resErr, etaErr  error
		wg              sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		resolution, resErr = o.invokeStage(ctx, engine.StageFindResolution, engine.PromptInputs{
			Summary:          summary,
			Actions:          actions,
			KnowledgeContext: o.retrieveContext(ctx, summary),
		})
	}()
	go func() {
		defer wg.Done()
		eta, etaErr = o.invokeStage(ctx, engine.StageEstimateETA, engine.PromptInputs{
			Summary: summary,
			Actions: actions,
		})
	}()
	wg.Wait()
	if resErr != nil {
		return o.failTurn(state, engine.StageFindResolution, resErr, start)
	}
	if etaErr != nil {
		return o.failTurn(state, engine.StageEstimateETA, etaErr, start)
	}

	routingInfo := NoEscalationSentinel
	if NeedsEscalation(actions) {
		o.metrics.Escalations.Inc()
		o.metrics.ObserveTurnIndicator("escalated")
		var teams []string
		if o.routes != nil {
			teams = o.routes.Teams()
		}
		routingInfo, err = o.invokeStage(ctx, engine.StageRouteEscalation, engine.PromptInputs{
			Actions: actions,
			Teams:   teams,
		})
		if err != nil {
			return o.failTurn(state, engine.StageRouteEscalation, err, start)
		}
	}

	rawDispatch, err := o.invokeStage(ctx, engine.StageDispatch, engine.PromptInputs{
		Summary:    summary,
		Actions:    actions,
		Resolution: resolution,
		Routing:    routingInfo,
		ETA:        eta,
	})
	if err != nil {
		return o.failTurn(state, engine.StageDispatch, err, start)
	}

	parsed := ParseDispatchOutput(rawDispatch)
	if parsed.Degraded {
		o.metrics.ParseFallbacks.Inc()
		o.log.WithField("stage", engine.StageDispatch).Debug("dispatch output degraded to plain-text reply")
	}

	reply := parsed.Reply
	if strings.TrimSpace(reply) == "" {
		reply = fallbackReply
	}

	status := Status(parsed.Status)
	if !KnownStatus(status) {
		// Out-of-set statuses are treated conservatively rather than trusted.
		o.metrics.UnknownStatus.Inc()
		o.log.WithField("status", parsed.Status).Warn("dispatch returned unrecognized status, treating as continue")
		status = StatusContinue
	}

	state.AppendSystem(reply)
	state.commitTurn(summary, actions, resolution, routingInfo, eta, status)

	o.metrics.TurnsTotal.WithLabelValues(string(status)).Inc()
	o.metrics.ObserveTurnLatency(time.Since(start))

	if status == StatusResolved {
		o.captureResolution(summary, resolution, routingInfo)
	}

	return TurnResult{
		Reply:      reply,
		Status:     status,
		Summary:    summary,
		Actions:    actions,
		Resolution: resolution,
		Routing:    routingInfo,
		ETA:        eta,
	}
}

// invokeStage runs one stage under the bounded per-stage timeout. A timeout
// is indistinguishable from any other collaborator error to the caller.
func (o *Orchestrator) invokeStage(ctx context.Context, stage engine.Stage, in engine.PromptInputs) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	out, err := o.invoker.Invoke(stageCtx, stage, engine.BuildPrompt(stage, in))
	o.metrics.ObserveStageLatency(string(stage), time.Since(start))
	if err != nil {
		o.metrics.StageErrors.WithLabelValues(string(stage), engine.ErrClass(err)).Inc()
		return "", fmt.Errorf("%s stage: %w", stage, err)
	}
	return out, nil
}

// failTurn is the single failure path: remaining stages are skipped, the
// apology is appended, and the state is left with empty per-turn fields and
// status "error". No partial reply ever surfaces as a real resolution.
func (o *Orchestrator) failTurn(state *State, stage engine.Stage, err error, start time.Time) TurnResult {
	o.log.WithError(err).WithField("stage", stage).Error("turn aborted by stage failure")

	state.AppendSystem(apologyReply)
	state.Status = StatusError

	o.metrics.TurnsTotal.WithLabelValues(string(StatusError)).Inc()
	o.metrics.ObserveTurnLatency(time.Since(start))
	o.metrics.ObserveTurnIndicator("turn_failed")

	return TurnResult{
		Reply:  apologyReply,
		Status: StatusError,
		Error:  fmt.Sprintf("an error occurred during processing: %v", err),
	}
}

// retrieveContext fetches past resolutions for the resolution prompt.
// Retrieval is advisory: failures are logged and the stage runs without it.
func (o *Orchestrator) retrieveContext(ctx context.Context, summary string) []string {
	if o.know == nil || o.knowledgeLimit <= 0 {
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, knowledgeSearchTimeout)
	defer cancel()

	entries, err := o.know.Search(searchCtx, summary, o.knowledgeLimit)
	if err != nil {
		o.log.WithError(err).Debug("knowledge search failed, resolving without context")
		return nil
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s -> %s", e.Summary, e.Resolution))
	}
	return out
}

// captureResolution saves a resolved turn's distilled outcome so future
// conversations can retrieve it. Customer text is redacted first.
func (o *Orchestrator) captureResolution(summary, resolution, routingInfo string) {
	if o.know == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), knowledgeSaveTimeout)
	defer cancel()

	redactedSummary, _ := policy.RedactPII(summary)
	redactedResolution, _ := policy.RedactPII(resolution)
	team := ""
	if routingInfo != NoEscalationSentinel {
		team = routingInfo
	}

	if err := o.know.Save(saveCtx, knowledge.Entry{
		Summary:    redactedSummary,
		Resolution: redactedResolution,
		Team:       team,
	}); err != nil {
		o.log.WithError(err).Debug("knowledge save failed")
	}
}
