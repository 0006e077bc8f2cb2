package handler

import (
	"net/http"
	"strconv"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/rules"
	"AlertConsoleAPI/internal/service"
	"AlertConsoleAPI/internal/session"

	"github.com/gorilla/mux"
)

// ConsoleHandler serves the rule form and list logic to the UI.
type ConsoleHandler struct {
	ruleService service.IRuleService
	sessions    *session.Cookies
	log         *logger.Logger
}

func NewConsoleHandler(ruleService service.IRuleService, sessions *session.Cookies, log *logger.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		ruleService: ruleService,
		sessions:    sessions,
		log:         log,
	}
}

func (h *ConsoleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/console/schema", h.GetSchema).Methods("GET")
	r.HandleFunc("/console/conditions", h.GetConditions).Methods("GET")
	r.HandleFunc("/console/rules", h.ListRules).Methods("GET")
	r.HandleFunc("/console/rules", h.CreateRule).Methods("POST")
	r.HandleFunc("/console/rules/validate", h.ValidateRule).Methods("POST")
	r.HandleFunc("/console/rules/{id:[0-9]+}", h.UpdateRule).Methods("PUT")
	r.HandleFunc("/console/rules/{id:[0-9]+}/duplicate", h.DuplicateRule).Methods("POST")
	r.HandleFunc("/console/rules/{id:[0-9]+}/toggle", h.ToggleRule).Methods("POST")
}

func (h *ConsoleHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: rules.GetSchema()})
}

type conditionsPayload struct {
	Platform   models.Platform         `json:"platform"`
	Conditions []rules.ConditionOption `json:"conditions"`
}

func (h *ConsoleHandler) GetConditions(w http.ResponseWriter, r *http.Request) {
	platform := models.Platform(r.URL.Query().Get("platform"))
	if platform == "" {
		platform = models.DefaultPlatform
	}
	if !platform.Valid() {
		respondError(w, http.StatusBadRequest, "Platform must be taboola or outbrain")
		return
	}

	var options []rules.ConditionOption
	for _, opt := range rules.GetSchema().Conditions {
		if rules.ConditionAvailable(platform, models.ConditionType(opt.Value)) {
			options = append(options, opt)
		}
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    conditionsPayload{Platform: platform, Conditions: options},
	})
}

func (h *ConsoleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	filter := rules.ParseFilter(r.URL.Query())

	found, err := h.ruleService.Search(r.Context(), h.sessions.For(w, r), filter)
	if err != nil {
		respondAppError(w, h.log, "list rules", err)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: found, Count: intPtr(len(found))})
}

// ValidateRule runs the submit checks without saving.
func (h *ConsoleHandler) ValidateRule(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	rule, err := rules.ValidateForSubmit(draft)
	if err != nil {
		respondAppError(w, h.log, "validate rule", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: rule})
}

func (h *ConsoleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, nil)
}

func (h *ConsoleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.submit(w, r, &id)
}

func (h *ConsoleHandler) submit(w http.ResponseWriter, r *http.Request, editingID *int64) {
	var draft models.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	saved, err := h.ruleService.Submit(r.Context(), h.sessions.For(w, r), draft, editingID)
	if err != nil {
		respondAppError(w, h.log, "save rule", err)
		return
	}

	status := http.StatusCreated
	message := "Rule created"
	if editingID != nil {
		status = http.StatusOK
		message = "Rule updated"
	}
	respondJSON(w, status, SuccessResponse{Success: true, Message: message, Data: saved})
}

// DuplicateRule returns an unsaved copy of the rule for the form to edit.
func (h *ConsoleHandler) DuplicateRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.ruleService.Duplicate(r.Context(), h.sessions.For(w, r), id)
	if err != nil {
		respondAppError(w, h.log, "duplicate rule", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: draft})
}

func (h *ConsoleHandler) ToggleRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active, err := strconv.ParseBool(r.URL.Query().Get("active"))
	if err != nil {
		respondAppError(w, h.log, "toggle rule",
			apperr.NewValidation(apperr.CodeMissingField, "active", "Query parameter active must be true or false"))
		return
	}

	msg, err := h.ruleService.Toggle(r.Context(), h.sessions.For(w, r), id, active)
	if err != nil {
		respondAppError(w, h.log, "toggle rule", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: msg})
}
