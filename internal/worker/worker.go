// Package worker provides async analysis processing for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medilint/medilint/internal/domain"
	"github.com/medilint/medilint/internal/report"
	"github.com/medilint/medilint/internal/rules"
)

// Worker processes analysis requests asynchronously from the EventBus.
type Worker struct {
	bus       domain.EventBus
	repo      domain.Repository
	engine    *rules.Engine
	processor *report.Processor

	mu            sync.Mutex
	stopped       bool
	subscriptions []domain.Subscription
	inflight      sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// beginWork registers an in-flight analysis so Stop can wait for it.
// Returns false once the worker has been stopped.
func (w *Worker) beginWork() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}
	w.inflight.Add(1)
	return true
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process (empty = global worker)
	TenantIDs []string

	// WorkerCount is the number of concurrent workers per tenant
	WorkerCount int
}

// NewWorker creates a new async worker. repo may be nil, in which case
// results are published but not persisted.
func NewWorker(bus domain.EventBus, repo domain.Repository, engine *rules.Engine, processor *report.Processor) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:       bus,
		repo:      repo,
		engine:    engine,
		processor: processor,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing requests for the given tenants.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.TenantIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all tenants (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicAnalysisRequested, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startTenantWorker starts workers for a specific tenant.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicAnalysisRequested, func(ctx context.Context, msg *domain.Message) error {
		return w.processAnalysis(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicAnalysisRequested,
	)

	return nil
}

// handleMessage handles messages from the global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processAnalysis(ctx, msg.TenantID, msg)
}

// AnalysisMessage is the message payload for an analysis request.
type AnalysisMessage struct {
	AnalysisID string `json:"analysisId"`
	TenantID   string `json:"tenantId"`
	TraceID    string `json:"traceId"`
	SourceType string `json:"sourceType"`
	Text       string `json:"text"`
}

// processAnalysis runs one request through the full pipeline.
func (w *Worker) processAnalysis(ctx context.Context, tenantID string, msg *domain.Message) error {
	if !w.beginWork() {
		return nil
	}
	defer w.inflight.Done()

	start := time.Now()

	var req AnalysisMessage
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse analysis message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message tenant if provided
	if req.TenantID != "" {
		tenantID = req.TenantID
	}

	traceID := req.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	analysisID := req.AnalysisID
	if analysisID == "" {
		analysisID = uuid.New().String()
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = domain.SourceText
	}

	slog.Debug("processing analysis",
		"analysis_id", analysisID,
		"tenant_id", tenantID,
		"trace_id", traceID,
	)

	var result *domain.AnalysisResult
	if strings.TrimSpace(req.Text) == "" {
		result = w.processor.EmptyInput(req.Text)
	} else {
		findings, err := w.engine.EvaluateText(ctx, req.Text)
		if err != nil {
			slog.Error("rule evaluation failed",
				"analysis_id", analysisID,
				"error", err,
			)
			return err
		}

		result = w.processor.Process(ctx, &report.Input{
			Text:       req.Text,
			SourceType: sourceType,
			Findings:   findings,
			Rules:      w.engine.GetLoadedRules(),
		})
	}

	rec := &domain.AnalysisRecord{
		ID:         analysisID,
		TenantID:   tenantID,
		SourceType: sourceType,
		Status:     result.ComplianceStatus,
		Score:      result.OverallScore,
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}

	if w.repo != nil {
		if err := w.repo.SaveAnalysis(ctx, tenantID, rec); err != nil {
			slog.Error("failed to save analysis",
				"analysis_id", analysisID,
				"error", err,
			)
		}
	}

	recPayload, _ := json.Marshal(rec)
	if err := w.bus.Publish(ctx, tenantID, domain.TopicAnalysisCompleted, recPayload); err != nil {
		slog.Error("failed to publish analysis result",
			"analysis_id", analysisID,
			"error", err,
		)
	}

	if result.RiskLevel == domain.RiskHigh {
		if err := w.bus.Publish(ctx, tenantID, domain.TopicAnalysisAlert, recPayload); err != nil {
			slog.Error("failed to publish alert",
				"analysis_id", analysisID,
				"error", err,
			)
		}
	}

	slog.Info("analysis processed",
		"analysis_id", analysisID,
		"tenant_id", tenantID,
		"status", result.ComplianceStatus,
		"score", result.OverallScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop unsubscribes all workers and waits for in-flight analyses to
// finish. Messages arriving after Stop are dropped.
func (w *Worker) Stop() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.inflight.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
