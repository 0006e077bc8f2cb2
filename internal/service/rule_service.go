package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/rules"
	"AlertConsoleAPI/internal/session"
)

const rulesPath = "/api/alerter-rules"

const (
	msgLoadFailed   = "Failed to load rules"
	msgLoadOne      = "Failed to load rule"
	msgSaveFailed   = "Failed to save rule"
	msgDeleteFailed = "Failed to delete rule"
	msgToggleFailed = "Failed to update rule status"
	msgStatsFailed  = "Failed to load rule statistics"
)

// IRuleService manages alert rules through the backend API.
type IRuleService interface {
	List(ctx context.Context, store session.Store, includeInactive bool) ([]models.AlertRule, error)
	Search(ctx context.Context, store session.Store, f rules.Filter) ([]models.AlertRule, error)
	Get(ctx context.Context, store session.Store, id int64) (*models.AlertRule, error)
	ListByAccount(ctx context.Context, store session.Store, accountName string) ([]models.AlertRule, error)
	ListByScope(ctx context.Context, store session.Store, scope models.Scope) ([]models.AlertRule, error)
	Stats(ctx context.Context, store session.Store) (*models.RuleStats, error)
	Submit(ctx context.Context, store session.Store, draft models.Draft, editingID *int64) (*models.AlertRule, error)
	Delete(ctx context.Context, store session.Store, id int64) (string, error)
	Activate(ctx context.Context, store session.Store, id int64) (string, error)
	Deactivate(ctx context.Context, store session.Store, id int64) (string, error)
	Toggle(ctx context.Context, store session.Store, id int64, active bool) (string, error)
	BulkDelete(ctx context.Context, store session.Store, ids []int64) (string, error)
	Duplicate(ctx context.Context, store session.Store, id int64) (models.Draft, error)
}

type RuleService struct {
	gw     Forwarder
	events EventPublisher
	log    *logger.Logger
}

func NewRuleService(gw Forwarder, events EventPublisher, log *logger.Logger) *RuleService {
	return &RuleService{
		gw:     gw,
		events: events,
		log:    log,
	}
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// List fetches active rules, or every rule when includeInactive is set.
func (s *RuleService) List(ctx context.Context, store session.Store, includeInactive bool) ([]models.AlertRule, error) {
	query := "active=true"
	if includeInactive {
		query = ""
	}
	return s.list(ctx, store, rulesPath, query)
}

// Search lists rules and applies the console's filter bar to them.
func (s *RuleService) Search(ctx context.Context, store session.Store, f rules.Filter) ([]models.AlertRule, error) {
	all, err := s.List(ctx, store, f.IncludeInactive)
	if err != nil {
		return nil, err
	}
	return rules.FilterRules(all, f), nil
}

func (s *RuleService) ListByAccount(ctx context.Context, store session.Store, accountName string) ([]models.AlertRule, error) {
	return s.list(ctx, store, rulesPath+"/account/"+url.PathEscape(accountName), "")
}

func (s *RuleService) ListByScope(ctx context.Context, store session.Store, scope models.Scope) ([]models.AlertRule, error) {
	if !scope.Valid() {
		return nil, apperr.NewValidation(apperr.CodeInvalidField, "scope", "Scope must be account or campaign")
	}
	return s.list(ctx, store, rulesPath+"/scope/"+string(scope), "")
}

func (s *RuleService) list(ctx context.Context, store session.Store, path, query string) ([]models.AlertRule, error) {
	resp, err := s.gw.Forward(ctx, store, gateway.Request{Method: http.MethodGet, Path: path, RawQuery: query})
	if err != nil {
		return nil, err
	}

	var body models.RuleListResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Data == nil {
		return nil, &apperr.RemoteError{Status: resp.Status, Message: firstNonEmpty(body.Error, msgLoadFailed)}
	}

	return rules.NormalizeAll(body.Data), nil
}

func (s *RuleService) Get(ctx context.Context, store session.Store, id int64) (*models.AlertRule, error) {
	resp, err := s.gw.Forward(ctx, store, gateway.Request{Method: http.MethodGet, Path: rulePath(id)})
	if err != nil {
		return nil, err
	}

	var body models.RuleResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Data == nil {
		return nil, &apperr.RemoteError{Status: resp.Status, Message: firstNonEmpty(body.Error, body.Message, msgLoadOne)}
	}

	rule := rules.Normalize(*body.Data)
	return &rule, nil
}

func (s *RuleService) Stats(ctx context.Context, store session.Store) (*models.RuleStats, error) {
	resp, err := s.gw.Forward(ctx, store, gateway.Request{Method: http.MethodGet, Path: rulesPath + "/stats"})
	if err != nil {
		return nil, err
	}

	var body models.StatsResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Data == nil {
		return nil, &apperr.RemoteError{Status: resp.Status, Message: firstNonEmpty(body.Error, msgStatsFailed)}
	}
	return body.Data, nil
}

// Submit validates draft and creates it, or updates the rule editingID when set.
// Validation failures are returned before anything is sent.
func (s *RuleService) Submit(ctx context.Context, store session.Store, draft models.Draft, editingID *int64) (*models.AlertRule, error) {
	rule, err := rules.ValidateForSubmit(draft)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule: %w", err)
	}

	req := gateway.Request{Method: http.MethodPost, Path: rulesPath, Body: payload}
	event := models.EventRuleCreated
	if editingID != nil {
		req = gateway.Request{Method: http.MethodPatch, Path: rulePath(*editingID), Body: payload}
		event = models.EventRuleUpdated
	}

	resp, err := s.gw.Forward(ctx, store, req)
	if err != nil {
		return nil, err
	}

	var body models.RuleResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || (body.Data == nil && body.RuleID == nil) {
		return nil, &apperr.RemoteError{Status: resp.Status, Message: firstNonEmpty(body.Message, body.Error, msgSaveFailed)}
	}

	var saved models.AlertRule
	switch {
	case body.Data != nil:
		saved = rules.Normalize(*body.Data)
	case editingID != nil:
		saved = rule
		saved.ID = editingID
	default:
		saved = rule
		saved.ID = body.RuleID
	}

	s.log.Info("Rule %q saved (%s)", saved.Name, event)
	publish(s.events, s.log, event, saved)
	return &saved, nil
}

func (s *RuleService) Delete(ctx context.Context, store session.Store, id int64) (string, error) {
	msg, err := s.command(ctx, store, gateway.Request{Method: http.MethodDelete, Path: rulePath(id)}, msgDeleteFailed)
	if err != nil {
		return "", err
	}
	publish(s.events, s.log, models.EventRuleDeleted, map[string]int64{"id": id})
	return msg, nil
}

// Activate is forwarded even when the rule is already active.
func (s *RuleService) Activate(ctx context.Context, store session.Store, id int64) (string, error) {
	msg, err := s.command(ctx, store, gateway.Request{Method: http.MethodPost, Path: rulePath(id) + "/activate"}, msgToggleFailed)
	if err != nil {
		return "", err
	}
	publish(s.events, s.log, models.EventRuleActivated, map[string]int64{"id": id})
	return msg, nil
}

// Deactivate is forwarded even when the rule is already inactive.
func (s *RuleService) Deactivate(ctx context.Context, store session.Store, id int64) (string, error) {
	msg, err := s.command(ctx, store, gateway.Request{Method: http.MethodPost, Path: rulePath(id) + "/deactivate"}, msgToggleFailed)
	if err != nil {
		return "", err
	}
	publish(s.events, s.log, models.EventRuleDeactivated, map[string]int64{"id": id})
	return msg, nil
}

func (s *RuleService) Toggle(ctx context.Context, store session.Store, id int64, active bool) (string, error) {
	if active {
		return s.Activate(ctx, store, id)
	}
	return s.Deactivate(ctx, store, id)
}

func (s *RuleService) BulkDelete(ctx context.Context, store session.Store, ids []int64) (string, error) {
	if len(ids) == 0 {
		return "", apperr.NewValidation(apperr.CodeMissingField, "ids", "Select at least one rule")
	}

	payload, err := json.Marshal(models.BulkDeleteRequest{IDs: ids})
	if err != nil {
		return "", err
	}

	msg, err := s.command(ctx, store, gateway.Request{Method: http.MethodPost, Path: rulesPath + "/bulk/delete", Body: payload}, msgDeleteFailed)
	if err != nil {
		return "", err
	}
	publish(s.events, s.log, models.EventRulesBulkDeleted, map[string][]int64{"ids": ids})
	return msg, nil
}

// Duplicate loads rule id and returns an unsaved copy ready for editing.
func (s *RuleService) Duplicate(ctx context.Context, store session.Store, id int64) (models.Draft, error) {
	rule, err := s.Get(ctx, store, id)
	if err != nil {
		return models.Draft{}, err
	}
	return rules.Duplicate(*rule), nil
}

// command forwards req and succeeds only when the answer carries a message.
func (s *RuleService) command(ctx context.Context, store session.Store, req gateway.Request, fallback string) (string, error) {
	resp, err := s.gw.Forward(ctx, store, req)
	if err != nil {
		return "", err
	}

	var body messageResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.Message == "" {
		return "", &apperr.RemoteError{Status: resp.Status, Message: firstNonEmpty(body.Error, body.Message, fallback)}
	}
	return body.Message, nil
}

func rulePath(id int64) string {
	return rulesPath + "/" + strconv.FormatInt(id, 10)
}
