// Package orchestrator wires the classifier, registry, tool-call executor,
// audit store, and external model client into the single per-turn pipeline:
// pre-scan, optional model invocation, post-scan, resolution, and audit.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/coastlineai/sentinel/internal/audit"
	"github.com/coastlineai/sentinel/internal/classifier"
	"github.com/coastlineai/sentinel/internal/llm"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/toolcall"
	"github.com/coastlineai/sentinel/pkg/logging"
)

var turnTracer = otel.Tracer("sentinel.internal.orchestrator")

// Registry is the subset of the resource registry the orchestrator and its
// executor consult.
type Registry interface {
	toolcall.Registry
	CulturalContext(region registry.Region) []string
}

// AuditStore is the subset of the audit log the orchestrator writes to.
type AuditStore interface {
	Record(ctx context.Context, e audit.CrisisEvent) (audit.CrisisEvent, error)
}

const (
	defaultModelTimeout = 8 * time.Second
	defaultMaxTokens    = int32(512)
	defaultTemperature  = float32(0.4)
	defaultTopP         = float32(0.9)
)

// Orchestrator runs the per-turn pipeline described in the package comment.
// One Orchestrator instance is safe for concurrent use by multiple turns;
// the only ordering guarantee it relies on is the caller serializing turns
// that share a (UserID, ConversationID).
type Orchestrator struct {
	registry Registry
	executor *toolcall.Executor
	audit    AuditStore
	model    llm.Client
	logger   *logging.Logger

	modelID      string
	modelTimeout time.Duration
	maxTokens    int32
	temperature  float32
	topP         float32

	hallucinationCache toolcall.HallucinationCache
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModelID sets the model identifier forwarded to llm.Request.Model
// (required by the Bedrock client; ignored by Gemini, which carries its own).
func WithModelID(id string) Option {
	return func(o *Orchestrator) { o.modelID = id }
}

// WithModelTimeout overrides the bounded interval for the external model
// call, the only suspension point in a turn.
func WithModelTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.modelTimeout = d
		}
	}
}

// WithModelParams overrides the sampling parameters sent to the model.
func WithModelParams(maxTokens int32, temperature, topP float32) Option {
	return func(o *Orchestrator) {
		o.maxTokens = maxTokens
		o.temperature = temperature
		o.topP = topP
	}
}

// WithHallucinationCache attaches a short-TTL dedup cache for the tool
// executor's check_hallucination resolution. Optional.
func WithHallucinationCache(c toolcall.HallucinationCache) Option {
	return func(o *Orchestrator) { o.hallucinationCache = c }
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(reg Registry, auditStore AuditStore, model llm.Client, logger *logging.Logger, opts ...Option) *Orchestrator {
	if reg == nil {
		panic("orchestrator: registry cannot be nil")
	}
	if auditStore == nil {
		panic("orchestrator: audit store cannot be nil")
	}
	if model == nil {
		panic("orchestrator: model client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	o := &Orchestrator{
		registry:     reg,
		audit:        auditStore,
		model:        model,
		logger:       logger,
		modelTimeout: defaultModelTimeout,
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
		topP:         defaultTopP,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.executor = toolcall.NewExecutor(reg, o, logger, toolcall.WithHallucinationCache(o.hallucinationCache))
	return o
}

// LogIncident implements toolcall.IncidentRecorder so a log_incident
// directive emitted by the model lands in the same audit store as every
// other CrisisEvent. The CRITICAL path resolves its own log_incident without
// this recorder and writes its single CrisisEvent through recordEvent.
func (o *Orchestrator) LogIncident(ctx context.Context, data map[string]string, tctx toolcall.Context) (string, error) {
	risk := classifier.ParseRiskLevel(strings.ToUpper(data["severity"]))
	e := audit.CrisisEvent{
		UserID:         tctx.UserID,
		ConversationID: tctx.ConversationID,
		RiskLevel:      string(risk),
	}
	recorded, err := o.audit.Record(ctx, e)
	if err != nil {
		return "", fmt.Errorf("orchestrator: log_incident: %w", err)
	}
	return recorded.ID, nil
}

// Process runs the full per-turn pipeline. It never returns an error to the
// caller: every failure mode resolves to a safe Response and, where the
// failure semantics call for it, a degraded audit entry.
func (o *Orchestrator) Process(ctx context.Context, req Request) Response {
	ctx, span := turnTracer.Start(ctx, "orchestrator.process")
	defer span.End()

	region := req.Region.Normalize()
	tctx := toolcall.Context{Region: region, UserID: req.UserID, ConversationID: req.ConversationID}
	span.SetAttributes(
		attribute.String("sentinel.region", string(region)),
		attribute.String("sentinel.conversation_id", req.ConversationID),
	)

	pre := classifier.PreScan(req.UserText, req.ConversationHistory, region)
	modelDegradation := containsPatternID(pre.TriggeredPatterns, "model_degradation.resource_failed")
	span.SetAttributes(attribute.String("sentinel.pre_scan_risk", string(pre.Risk)))

	var resp Response
	if pre.Risk == classifier.RiskCritical {
		resp = o.handleCritical(ctx, req, tctx, pre, modelDegradation)
	} else {
		resp = o.handleModelTurn(ctx, req, tctx, pre, modelDegradation)
	}

	span.SetAttributes(
		attribute.String("sentinel.final_risk", string(resp.Risk)),
		attribute.Bool("sentinel.ai_failure_detected", resp.AIFailureDetected),
	)
	return resp
}

// handleCritical implements step 3: the model is never invoked. The
// response is synthesized directly from get_crisis_resources and
// log_incident directives against the pre-scan risk.
func (o *Orchestrator) handleCritical(ctx context.Context, req Request, tctx toolcall.Context, pre classifier.PreScanResult, modelDegradation bool) Response {
	text := fmt.Sprintf(
		"[TOOL_CALL: get_crisis_resources(region='%s', situation_type='emergency')][TOOL_CALL: get_crisis_resources(region='%s', situation_type='crisis')][TOOL_CALL: log_incident(incident_data={type='crisis_escalation', severity='critical'})]",
		tctx.Region, tctx.Region,
	)
	segments, directives, _ := toolcall.Parse(text)
	// The turn's one CrisisEvent is written by recordEvent below, with the
	// full turn metadata, so log_incident resolves here without a recorder.
	criticalExecutor := toolcall.NewExecutor(o.registry, nil, o.logger, toolcall.WithHallucinationCache(o.hallucinationCache))
	subs, errs := criticalExecutor.Resolve(ctx, directives, tctx)
	finalText := toolcall.Render(segments, subs)

	degraded := false
	for _, err := range errs {
		if errors.Is(err, toolcall.ErrRegistryEmpty) {
			degraded = true
		}
	}

	resp := Response{
		FinalText:                finalText,
		Risk:                     classifier.RiskCritical,
		ConversationStopped:      true,
		ModelDegradationDetected: modelDegradation,
		AIFailureDetected:        degraded,
	}

	eventID := o.recordEvent(ctx, req, classifier.RiskCritical, pre.TriggeredPatterns, resp, resourceIDsFromSubs(subs), degraded)
	resp.EventID = eventID
	return resp
}

// handleModelTurn implements steps 4-8 for any pre-scan risk below CRITICAL.
func (o *Orchestrator) handleModelTurn(ctx context.Context, req Request, tctx toolcall.Context, pre classifier.PreScanResult, modelDegradation bool) Response {
	ctx, span := turnTracer.Start(ctx, "orchestrator.model_turn")
	defer span.End()

	culturalContext := o.registry.CulturalContext(tctx.Region)
	systemPrompt := buildSystemPrompt(tctx.Region, pre.Risk, culturalContext)

	messages := make([]llm.Message, 0, len(req.ConversationHistory)+1)
	for i, turn := range req.ConversationHistory {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.UserText})

	modelCtx, cancel := context.WithTimeout(ctx, o.modelTimeout)
	defer cancel()

	result, err := o.model.Complete(modelCtx, llm.Request{
		Model:       o.modelID,
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
		TopP:        o.topP,
	})
	if err != nil {
		span.RecordError(err)
		return o.handleModelFailure(ctx, req, tctx, pre, modelDegradation, err)
	}
	span.SetAttributes(
		attribute.Int64("sentinel.model_input_tokens", int64(result.Usage.InputTokens)),
		attribute.Int64("sentinel.model_output_tokens", int64(result.Usage.OutputTokens)),
	)

	return o.finishTurn(ctx, req, tctx, pre, modelDegradation, result.Text)
}

// handleModelFailure implements the ModelUnreachable/ModelTimeout failure
// semantics: fall back to the rule-tier response for the pre-scan risk.
func (o *Orchestrator) handleModelFailure(ctx context.Context, req Request, tctx toolcall.Context, pre classifier.PreScanResult, modelDegradation bool, modelErr error) Response {
	kind := ErrModelUnreachable
	if errors.Is(modelErr, context.DeadlineExceeded) {
		kind = ErrModelTimeout
	}
	o.logger.Warn("model call failed, falling back to rule tier",
		"error", modelErr.Error(), "kind", kind.Error(), "risk", string(pre.Risk))

	fallbackText := o.ruleTierFallback(ctx, tctx, pre.Risk)

	resp := Response{
		FinalText:         fallbackText,
		Risk:              pre.Risk,
		AIFailureDetected: true,
	}
	if pre.Risk.AtLeast(classifier.RiskMedium) {
		resp.EventID = o.recordEvent(ctx, req, pre.Risk, pre.TriggeredPatterns, resp, nil, false)
	}
	return resp
}

// ruleTierFallback synthesizes a response without the model: a
// get_crisis_resources directive for the mapped situation when the risk
// warrants one, otherwise a neutral apology.
func (o *Orchestrator) ruleTierFallback(ctx context.Context, tctx toolcall.Context, risk classifier.RiskLevel) string {
	situation, ok := situationForRisk[risk]
	if !ok {
		return "Sorry, I'm having trouble responding right now. Could you try again in a moment?"
	}
	text := fmt.Sprintf("[TOOL_CALL: get_crisis_resources(region='%s', situation_type='%s')]", tctx.Region, situation)
	segments, directives, _ := toolcall.Parse(text)
	subs, _ := o.executor.Resolve(ctx, directives, tctx)
	return toolcall.Render(segments, subs)
}

// finishTurn implements steps 5-8: parse, post-scan, sanitize, resolve,
// render, and conditionally audit.
func (o *Orchestrator) finishTurn(ctx context.Context, req Request, tctx toolcall.Context, pre classifier.PreScanResult, modelDegradation bool, modelOutput string) Response {
	ctx, span := turnTracer.Start(ctx, "orchestrator.post_scan_and_resolve")
	defer span.End()

	segments, directives, malformed := toolcall.Parse(modelOutput)

	post := classifier.PostScan(modelOutput, tctx.Region, o.registry)
	aiFailure := post.AIFailureDetected || len(post.VictimBlameHits) > 0 || len(malformed) > 0
	span.SetAttributes(
		attribute.Bool("sentinel.ai_failure_detected", aiFailure),
		attribute.Int("sentinel.malformed_directive_count", len(malformed)),
	)

	blocked := append([]string{}, post.FabricatedLiterals...)
	for _, hit := range post.WrongRegionNumbers {
		blocked = append(blocked, hit.Number)
	}
	for _, phrase := range post.VictimBlameHits {
		blocked = append(blocked, phrase)
	}
	blocked = append(blocked, malformed...)
	segments, _ = toolcall.SanitizeSegments(segments, blocked)

	for _, snippet := range malformed {
		o.logger.Warn("malformed tool-call directive stripped",
			"error", toolcall.ErrMalformedDirective.Error(), "snippet", snippet)
	}

	if aiFailure {
		situation, ok := situationForRisk[pre.Risk]
		if !ok {
			situation = registry.SituationSupport
		}
		forced := fmt.Sprintf("[TOOL_CALL: get_crisis_resources(region='%s', situation_type='%s')]", tctx.Region, situation)
		forcedSegments, forcedDirectives, _ := toolcall.Parse(forced)
		offset := len(directives)
		for i := range forcedSegments {
			if forcedSegments[i].Kind == toolcall.SegmentDirective {
				forcedSegments[i].DirectiveIndex += offset
			}
		}
		segments = append(segments, forcedSegments...)
		directives = append(directives, forcedDirectives...)
	}

	subs, resolveErrs := o.executor.Resolve(ctx, directives, tctx)
	finalText := toolcall.Render(segments, subs)

	degraded := false
	for _, err := range resolveErrs {
		if errors.Is(err, toolcall.ErrRegistryEmpty) {
			degraded = true
		}
	}

	risk := pre.Risk
	if post.EscalatedRisk.AtLeast(risk) {
		risk = post.EscalatedRisk
	}

	resp := Response{
		FinalText:                finalText,
		Risk:                     risk,
		ModelDegradationDetected: modelDegradation,
		AIFailureDetected:        aiFailure || degraded,
	}

	if risk.AtLeast(classifier.RiskMedium) || resp.AIFailureDetected {
		resp.EventID = o.recordEvent(ctx, req, risk, pre.TriggeredPatterns, resp, resourceIDsFromSubs(subs), degraded)
	}
	return resp
}

// recordEvent appends a CrisisEvent and returns its id, or logs and returns
// empty string if the append itself failed (the audit store being down must
// never surface to the user).
func (o *Orchestrator) recordEvent(ctx context.Context, req Request, risk classifier.RiskLevel, patterns []string, resp Response, resourceIDs []string, degraded bool) string {
	e := audit.CrisisEvent{
		UserID:                   req.UserID,
		ConversationID:           req.ConversationID,
		MessageID:                req.MessageID,
		RiskLevel:                string(risk),
		TriggeredPatterns:        patterns,
		AIFailureDetected:        resp.AIFailureDetected,
		ModelDegradationDetected: resp.ModelDegradationDetected,
		ConversationStopped:      resp.ConversationStopped,
		ResourcesSubstituted:     resourceIDs,
	}
	if degraded {
		e.ReviewerStatus = audit.ReviewPending
	}

	recorded, err := o.audit.Record(ctx, e)
	if err != nil {
		o.logger.Error("failed to record crisis event", "error", err.Error(),
			"conversation_id", req.ConversationID, "risk", string(risk))
		return ""
	}
	return recorded.ID
}

func resourceIDsFromSubs(subs []toolcall.Substitution) []string {
	var ids []string
	for _, s := range subs {
		ids = append(ids, s.ResourceIDs...)
	}
	return ids
}

func containsPatternID(patterns []string, id string) bool {
	for _, p := range patterns {
		if p == id {
			return true
		}
	}
	return false
}
