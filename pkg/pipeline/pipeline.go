package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/relayhub/gateway/pkg/activity"
	"github.com/relayhub/gateway/pkg/budget"
	"github.com/relayhub/gateway/pkg/cache"
	"github.com/relayhub/gateway/pkg/classifier"
	"github.com/relayhub/gateway/pkg/compressor"
	"github.com/relayhub/gateway/pkg/evaluator"
	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/router"
	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/stream"
)

// metadataWait bounds how long Run waits for a streaming dispatch's trailer
// metadata before persisting the task record without final usage/cost.
const metadataWait = 120 * time.Second

// Run drives req through every stage of the pipeline (parse is already done
// by the HTTP layer) and returns what the caller should write back to the
// client. A non-nil *Error always carries the HTTP status to use.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	p.insertRequest(ctx, req)

	lastUser := lastUserMessage(req.Messages)

	if rating, idPrefix, ok := parseFeedback(lastUser); ok {
		p.recordStep(ctx, req.RequestID, store.StepFeedback, store.StepStarted, "")
		text, err := p.handleFeedback(ctx, rating, idPrefix)
		if err != nil {
			p.finishRequest(ctx, req, store.StatusError, 0, err)
			return nil, err
		}
		p.finishRequest(ctx, req, store.StatusCompleted, 0, nil)
		return &Outcome{Synthetic: text}, nil
	}

	if !req.Stream {
		dedupKey := cache.DedupKey(lastUser)
		if p.Cache.SeenRecently(dedupKey) {
			p.recordStep(ctx, req.RequestID, store.StepDedup, store.StepSkipped, "duplicate of a request seen within the dedup window")
			p.finishRequest(ctx, req, store.StatusDeduped, 0, nil)
			return nil, errStatus(429, "duplicate_request", "an identical request was already submitted seconds ago")
		}
	}

	class, decision := p.classifyAndRoute(ctx, req)

	decision.ModelID = p.maybeUpgradeForAgenticClient(req, class, decision)

	budgetDecision := p.Budget.Check(ctx)
	p.recordStep(ctx, req.RequestID, store.StepBudgetCheck, store.StepCompleted, budgetDecision.Reason)
	if !budgetDecision.Allowed {
		p.finishRequest(ctx, req, store.StatusError, 0, nil)
		return nil, errStatus(429, "budget_exceeded", budgetDecision.Reason)
	}
	if budgetDecision.Downgrade {
		decision.ModelID = router.DowngradeClaudeModelID(decision.ModelID)
	}

	systemPrompt := systemPromptOf(req.Messages)

	if !req.Stream {
		responseKey := cache.ResponseKey(decision.ProviderID, decision.ModelID, systemPrompt, req.Messages)
		if cached, ok := p.Cache.Get(responseKey); ok {
			p.recordStep(ctx, req.RequestID, store.StepCacheCheck, store.StepCompleted, "cache hit")
			taskID := p.logTask(ctx, req, class, decision, compressor.Result{Messages: req.Messages}, cached, true, budgetDecision.Remaining, store.DispatchNone, true)
			p.finishRequest(ctx, req, store.StatusCached, 0, nil)
			return &Outcome{
				Response: &providers.CompletionResponse{
					Model:        decision.ModelID,
					Content:      cached.Content,
					FinishReason: cached.FinishReason,
					Usage:        cached.Usage,
					ToolCalls:    cached.ToolCalls,
					Created:      time.Now().Unix(),
				},
				CacheHit: true,
				Headers:  p.headersFor(req, decision, taskID, 0, true, store.DispatchNone),
			}, nil
		}
		p.recordStep(ctx, req.RequestID, store.StepCacheCheck, store.StepCompleted, "cache miss")
	}

	compressed := compressor.Compress(req.Messages)
	p.recordStep(ctx, req.RequestID, store.StepCompress, store.StepCompleted, "")

	provider, ok := p.Providers.Get(decision.ProviderID)
	if !ok {
		p.finishRequest(ctx, req, store.StatusError, 0, nil)
		return nil, errStatus(500, "provider_unavailable", "selected provider "+decision.ProviderID+" is not available")
	}
	dispatchMode := dispatchModeOf(provider)

	providerReq := &providers.CompletionRequest{
		Model:       decision.ModelID,
		Messages:    compressed.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       req.Tools,
		ToolChoice:  req.ToolChoice,
		Stop:        req.Stop,
		Stream:      req.Stream,
	}

	if p.Activity != nil {
		p.Activity.Register(req.RequestID, decision.ProviderID, decision.ModelID, string(class.Category), estimatePromptTokens(compressed.Messages))
	}

	if req.Stream {
		return p.dispatchStreaming(ctx, req, class, decision, compressed, budgetDecision, provider, providerReq, dispatchMode)
	}
	return p.dispatchNonStreaming(ctx, req, class, decision, compressed, budgetDecision, provider, providerReq, systemPrompt, dispatchMode)
}

// dispatchModeOf reports how a subprocess provider will serve the request
// (warm pool, pinned, or ephemeral); HTTP-backed providers have no
// dispatch mode of their own, so this is store.DispatchNone for them.
func dispatchModeOf(provider providers.Provider) store.DispatchMode {
	return store.DispatchMode(provider.GetConfig().DispatchMode)
}

func (p *Pipeline) classifyAndRoute(ctx context.Context, req Request) (classifier.Result, *router.Decision) {
	class, err := p.Classifier.Classify(ctx, req.Messages)
	if err != nil {
		p.recordStep(ctx, req.RequestID, store.StepClassify, store.StepError, err.Error())
		class = classifier.Result{Category: classifier.CategoryOther, Complexity: 50}
	} else {
		p.recordStep(ctx, req.RequestID, store.StepClassify, store.StepCompleted, string(class.Category))
	}

	decision, err := p.Router.Resolve(ctx, router.Request{
		RequestedModel: req.RequestedModel,
		Category:       string(class.Category),
		Complexity:     class.Complexity,
	})
	if err != nil {
		p.recordStep(ctx, req.RequestID, store.StepRoute, store.StepError, err.Error())
		decision = &router.Decision{
			ProviderID: "claude-cli",
			ModelID:    router.SonnetModelID(),
			Reason:     "router failure, falling back to the hard default",
			Category:   string(class.Category),
			Complexity: class.Complexity,
		}
	} else {
		p.recordStep(ctx, req.RequestID, store.StepRoute, store.StepCompleted, decision.Reason)
	}
	return class, decision
}

// maybeUpgradeForAgenticClient implements spec §4.1 stage 5: an agentic
// coding client on the haiku-tier Claude model is bumped to sonnet, since
// haiku tends to mishandle the client's embedded tool-call protocol.
func (p *Pipeline) maybeUpgradeForAgenticClient(req Request, class classifier.Result, decision *router.Decision) string {
	if isAgenticClient(req.ClientID) && router.IsHaikuModel(decision.ModelID) {
		return router.SonnetModelID()
	}
	return decision.ModelID
}

func (p *Pipeline) dispatchNonStreaming(ctx context.Context, req Request, class classifier.Result, decision *router.Decision, compressed compressor.Result, budgetDecision budget.Decision, provider providers.Provider, providerReq *providers.CompletionRequest, systemPrompt string, dispatchMode store.DispatchMode) (*Outcome, error) {
	start := time.Now()
	p.recordStep(ctx, req.RequestID, store.StepProviderDispatch, store.StepStarted, "")

	resp, err := provider.SendCompletion(ctx, providerReq)
	latency := time.Since(start)

	if err != nil {
		p.recordStep(ctx, req.RequestID, store.StepProviderDispatch, store.StepError, err.Error())
		p.logTask(ctx, req, class, decision, compressed, stream.Metadata{}, false, budgetDecision.Remaining, dispatchMode, false)
		p.finishRequest(ctx, req, store.StatusError, latency, err)
		return nil, errStatus(500, "provider_error", err.Error())
	}
	p.recordStep(ctx, req.RequestID, store.StepProviderDone, store.StepCompleted, "")

	result := evaluator.Evaluate(evaluator.Input{
		Text:       resp.Content,
		CLISuccess: true,
		Category:   class.Category,
		Complexity: class.Complexity,
	})

	meta := stream.Metadata{
		Content:      resp.Content,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
		ToolCalls:    resp.ToolCalls,
		CostUSD:      p.Estimator.EstimateCost(decision.ProviderID+":"+decision.ModelID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}

	responseKey := cache.ResponseKey(decision.ProviderID, decision.ModelID, systemPrompt, req.Messages)
	p.Cache.Put(responseKey, meta)

	if m, ok := resp.Metadata["dispatch_mode"]; ok {
		dispatchMode = store.DispatchMode(m)
	}

	if p.Activity != nil {
		p.Activity.Complete(req.RequestID, activity.FeedEntry{
			RequestID:    req.RequestID,
			Provider:     decision.ProviderID,
			Model:        decision.ModelID,
			Category:     string(class.Category),
			CompletedAt:  time.Now(),
			TokensIn:     meta.Usage.PromptTokens,
			TokensOut:    meta.Usage.CompletionTokens,
			CostUSD:      meta.CostUSD,
			Success:      result.IsSuccess,
			FinishReason: meta.FinishReason,
		})
	}

	taskID := p.logTaskWithScore(ctx, req, class, decision, compressed, meta, false, budgetDecision.Remaining, dispatchMode, true, latency, result)
	p.finishRequest(ctx, req, store.StatusCompleted, latency, nil)

	return &Outcome{
		Response: resp,
		Headers:  p.headersFor(req, decision, taskID, compressed.TokensBefore-compressed.TokensAfter, false, dispatchMode),
	}, nil
}

func (p *Pipeline) dispatchStreaming(ctx context.Context, req Request, class classifier.Result, decision *router.Decision, compressed compressor.Result, budgetDecision budget.Decision, provider providers.Provider, providerReq *providers.CompletionRequest, dispatchMode store.DispatchMode) (*Outcome, error) {
	start := time.Now()
	p.recordStep(ctx, req.RequestID, store.StepProviderStreaming, store.StepStarted, "")

	chunks, err := provider.StreamCompletion(ctx, providerReq)
	if err != nil {
		p.recordStep(ctx, req.RequestID, store.StepProviderStreaming, store.StepError, err.Error())
		p.logTask(ctx, req, class, decision, compressed, stream.Metadata{}, false, budgetDecision.Remaining, dispatchMode, false)
		p.finishRequest(ctx, req, store.StatusError, time.Since(start), err)
		return nil, errStatus(500, "provider_error", err.Error())
	}

	detectToolCalls := decision.ProviderID == "claude-cli"
	out, promise := stream.Transform(req.RequestID, decision.ProviderID+":"+decision.ModelID, chunks, p.activityRecorder(), p.Estimator, detectToolCalls)

	go p.finishStreamingTask(req, class, decision, compressed, budgetDecision, start, promise, dispatchMode)

	return &Outcome{
		StreamChunks: out,
		Metadata:     promise,
		Headers:      p.headersFor(req, decision, "", compressed.TokensBefore-compressed.TokensAfter, false, dispatchMode),
	}, nil
}

// finishStreamingTask waits for the stream's trailer metadata (capped at
// metadataWait) and persists the task record once it resolves, since a
// streaming dispatch's usage and cost aren't known until the stream ends.
func (p *Pipeline) finishStreamingTask(req Request, class classifier.Result, decision *router.Decision, compressed compressor.Result, budgetDecision budget.Decision, start time.Time, promise *stream.MetadataPromise, dispatchMode store.DispatchMode) {
	timeout := time.NewTimer(metadataWait)
	defer timeout.Stop()

	meta, ok := promise.Wait(timeout.C)
	latency := time.Since(start)
	ctx := context.Background()

	if !ok {
		slog.Warn("pipeline: timed out waiting for stream metadata", "request_id", req.RequestID)
		p.logTask(ctx, req, class, decision, compressed, stream.Metadata{}, false, budgetDecision.Remaining, dispatchMode, false)
		p.finishRequest(ctx, req, store.StatusError, latency, nil)
		return
	}

	result := evaluator.Evaluate(evaluator.Input{
		Text:       meta.Content,
		CLISuccess: true,
		Category:   class.Category,
		Complexity: class.Complexity,
	})

	if p.Activity != nil {
		p.Activity.Complete(req.RequestID, activity.FeedEntry{
			RequestID:    req.RequestID,
			Provider:     decision.ProviderID,
			Model:        decision.ModelID,
			Category:     string(class.Category),
			CompletedAt:  time.Now(),
			TokensIn:     meta.Usage.PromptTokens,
			TokensOut:    meta.Usage.CompletionTokens,
			CostUSD:      meta.CostUSD,
			Success:      result.IsSuccess,
			FinishReason: meta.FinishReason,
		})
	}

	p.recordStep(ctx, req.RequestID, store.StepProviderDone, store.StepCompleted, "")
	p.logTaskWithScore(ctx, req, class, decision, compressed, meta, false, budgetDecision.Remaining, dispatchMode, true, latency, result)
	p.finishRequest(ctx, req, store.StatusCompleted, latency, nil)
}

func (p *Pipeline) activityRecorder() stream.ActivityRecorder {
	if p.Activity == nil {
		return nil
	}
	return p.Activity
}

func (p *Pipeline) insertRequest(ctx context.Context, req Request) {
	err := p.Store.InsertRequest(ctx, &store.Request{
		ID:             req.RequestID,
		ReceivedAt:     time.Now(),
		ClientID:       req.ClientID,
		RequestedModel: req.RequestedModel,
		MessageCount:   len(req.Messages),
		ToolCount:      len(req.Tools),
		Streaming:      req.Stream,
		PromptPreview:  previewOf(lastUserMessage(req.Messages)),
		Status:         store.StatusProcessing,
	})
	if err != nil {
		slog.Error("pipeline: failed to insert request record", "request_id", req.RequestID, "error", err)
	}
}

func (p *Pipeline) finishRequest(ctx context.Context, req Request, status store.RequestStatus, latency time.Duration, err error) {
	httpStatus := 200
	errMsg := ""
	if err != nil {
		httpStatus = 500
		errMsg = err.Error()
	}
	if status == store.StatusError && err == nil {
		httpStatus = 500
	}
	if status == store.StatusDeduped {
		httpStatus = 429
	}
	updateErr := p.Store.UpdateRequestStatus(ctx, req.RequestID, status, httpStatus, errMsg, time.Now(), latency)
	if updateErr != nil {
		slog.Error("pipeline: failed to update request status", "request_id", req.RequestID, "error", updateErr)
	}
}

func (p *Pipeline) recordStep(ctx context.Context, requestID string, name store.StepName, status store.StepStatus, detail string) {
	err := p.Store.InsertStep(ctx, &store.Step{
		ID:        uuid.NewString(),
		RequestID: requestID,
		CreatedAt: time.Now(),
		Name:      name,
		Status:    status,
		Detail:    detail,
	})
	if err != nil {
		slog.Error("pipeline: failed to insert step record", "request_id", requestID, "step", name, "error", err)
	}
}

// logTask persists a task record with a zero heuristic score, for paths
// (errors, dedup-adjacent cache checks) that never reach evaluation.
func (p *Pipeline) logTask(ctx context.Context, req Request, class classifier.Result, decision *router.Decision, compressed compressor.Result, meta stream.Metadata, cacheHit, cliSuccess bool, remaining float64, mode store.DispatchMode, success bool) string {
	return p.logTaskWithScore(ctx, req, class, decision, compressed, meta, cacheHit, remaining, mode, success, 0, evaluator.Result{})
}

func (p *Pipeline) logTaskWithScore(ctx context.Context, req Request, class classifier.Result, decision *router.Decision, compressed compressor.Result, meta stream.Metadata, cacheHit bool, remaining float64, mode store.DispatchMode, cliSuccess bool, latency time.Duration, result evaluator.Result) string {
	taskID := uuid.NewString()
	task := &store.Task{
		ID:                taskID,
		RequestID:         req.RequestID,
		CreatedAt:         time.Now(),
		Category:          string(class.Category),
		Complexity:        class.Complexity,
		PromptSummary:     previewOf(lastUserMessage(req.Messages)),
		MessageCount:      len(req.Messages),
		RequestedModel:    req.RequestedModel,
		ProviderID:        decision.ProviderID,
		SelectedModelID:   decision.ModelID,
		RouterReason:      decision.Reason,
		TokensIn:          meta.Usage.PromptTokens,
		TokensOut:         meta.Usage.CompletionTokens,
		CostUSD:           meta.CostUSD,
		Latency:           latency,
		Streaming:         req.Stream,
		TokensBeforeCompr: compressed.TokensBefore,
		TokensAfterCompr:  compressed.TokensAfter,
		CacheHit:          cacheHit,
		RemainingBudget:   remaining,
		DispatchMode:      mode,
		CLISuccess:        cliSuccess,
		HeuristicScore:    result.HeuristicScore,
		FullPrompt:        lastUserMessage(req.Messages),
		FullResponse:      meta.Content,
	}
	if err := p.Store.InsertTask(ctx, task); err != nil {
		slog.Error("pipeline: failed to insert task record", "request_id", req.RequestID, "error", err)
	}
	return taskID
}

func (p *Pipeline) headersFor(req Request, decision *router.Decision, taskID string, tokensSaved int, cacheHit bool, dispatchMode store.DispatchMode) map[string]string {
	headers := map[string]string{
		"x-request-id":    req.RequestID,
		"x-provider":      decision.ProviderID,
		"x-model":         decision.ModelID,
		"x-router-reason": decision.Reason,
		"x-tokens-saved":  strconv.Itoa(tokensSaved),
		"x-cache-hit":     formatBool(cacheHit),
	}
	if dispatchMode != store.DispatchNone {
		headers["x-dispatch-mode"] = string(dispatchMode)
	}
	if !req.Stream && taskID != "" {
		headers["x-task-id"] = taskID
	}
	return headers
}

func lastUserMessage(messages []providers.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == providers.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func systemPromptOf(messages []providers.Message) string {
	for _, m := range messages {
		if m.Role == providers.RoleSystem {
			return m.Content
		}
	}
	return ""
}

func estimatePromptTokens(messages []providers.Message) int {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}
	return chars / 4
}

const previewMaxLen = 200

func previewOf(text string) string {
	if len(text) <= previewMaxLen {
		return text
	}
	return text[:previewMaxLen] + "..."
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
