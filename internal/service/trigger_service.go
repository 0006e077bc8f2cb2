package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/metrics"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/session"
)

const cronPath = "/api/cron/"

// DefaultEndpoints are the "run alert checks now" jobs, one per platform.
var DefaultEndpoints = []models.TriggerEndpoint{
	{Name: "Taboola", Endpoint: "taboola/sync-realtime-reports-threshold"},
	{Name: "Outbrain", Endpoint: "outbrain/sync-realtime-reports-threshold"},
}

type ITriggerService interface {
	Endpoints() []models.TriggerEndpoint
	Run(ctx context.Context, store session.Store) (*models.TriggerReport, error)
}

type TriggerService struct {
	gw          Forwarder
	endpoints   []models.TriggerEndpoint
	concurrency int
	hub         Broadcaster
	events      EventPublisher
	metrics     *metrics.Metrics
	log         *logger.Logger
}

type TriggerConfig struct {
	Endpoints   []models.TriggerEndpoint
	Concurrency int
	Hub         Broadcaster
	Events      EventPublisher
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

func NewTriggerService(gw Forwarder, cfg TriggerConfig) *TriggerService {
	endpoints := cfg.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = len(endpoints)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &TriggerService{
		gw:          gw,
		endpoints:   endpoints,
		concurrency: concurrency,
		hub:         cfg.Hub,
		events:      cfg.Events,
		metrics:     cfg.Metrics,
		log:         log,
	}
}

func (s *TriggerService) Endpoints() []models.TriggerEndpoint {
	out := make([]models.TriggerEndpoint, len(s.endpoints))
	copy(out, s.endpoints)
	return out
}

// Run calls every endpoint and reports the results in declaration order. A failing
// endpoint, including one refused for lack of a session, is recorded in its slot and
// never stops the others.
func (s *TriggerService) Run(ctx context.Context, store session.Store) (*models.TriggerReport, error) {
	started := time.Now()
	results := make([]models.TriggerResult, len(s.endpoints))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ep := range s.endpoints {
		g.Go(func() error {
			res := s.call(ctx, store, ep)
			results[i] = res
			s.metrics.ObserveTrigger(ep.Endpoint, res.Success)
			if s.hub != nil {
				s.hub.Broadcast(models.EventTriggerResult, res)
			}
			return nil
		})
	}
	g.Wait()

	report := &models.TriggerReport{
		Results:    results,
		AllSuccess: allSucceeded(results),
		HasErrors:  anyFailed(results),
		StartedAt:  started.UTC(),
		Duration:   time.Since(started).Round(time.Millisecond).String(),
	}

	s.log.Info("Manual trigger finished: %d endpoints, all_success=%t", len(results), report.AllSuccess)
	if s.hub != nil {
		s.hub.Broadcast(models.EventTriggerCompleted, report)
	}
	publish(s.events, s.log, models.EventTriggerCompleted, report)

	return report, nil
}

func (s *TriggerService) call(ctx context.Context, store session.Store, ep models.TriggerEndpoint) models.TriggerResult {
	failed := models.TriggerResult{
		Name:     ep.Name,
		Endpoint: ep.Endpoint,
		Success:  false,
		Message:  apperr.MessageRequestFailed,
	}

	resp, err := s.gw.Forward(ctx, store, gateway.Request{Method: http.MethodGet, Path: cronPath + ep.Endpoint})
	if err != nil {
		s.log.Warn("Trigger %s failed: %v", ep.Endpoint, err)
		return failed
	}

	var body models.CronResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		s.log.Warn("Trigger %s returned an unexpected body: %v", ep.Endpoint, err)
		return failed
	}

	return models.TriggerResult{
		Name:     ep.Name,
		Endpoint: ep.Endpoint,
		Success:  body.Success,
		Message:  body.Message,
		Data:     body.Data,
		Errors:   body.Errors,
	}
}

func allSucceeded(results []models.TriggerResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

func anyFailed(results []models.TriggerResult) bool {
	for _, r := range results {
		if !r.Success {
			return true
		}
	}
	return false
}
