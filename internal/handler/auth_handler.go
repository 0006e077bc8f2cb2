package handler

import (
	"net/http"

	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/session"

	"github.com/gorilla/mux"
)

type AuthHandler struct {
	gw       *gateway.Client
	sessions *session.Cookies
	log      *logger.Logger
}

func NewAuthHandler(gw *gateway.Client, sessions *session.Cookies, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		gw:       gw,
		sessions: sessions,
		log:      log,
	}
}

func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/signup", h.Signup).Methods("POST")
	r.HandleFunc("/auth/logout", h.Logout).Methods("POST")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "/api/auth/login")
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, "/api/auth/signup")
}

// authenticate relays the backend's answer; a token in a successful answer becomes the session cookie.
func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request, path string) {
	body, err := readJSONBody(w, r)
	if err != nil || body == nil {
		respondError(w, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	resp, err := h.gw.Authenticate(r.Context(), h.sessions.For(w, r), path, body)
	if err != nil {
		respondAppError(w, h.log, "authenticate "+path, err)
		return
	}
	gateway.Relay(w, resp, nil)
}

// Logout clears the session cookie. The backend keeps no session state to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.For(w, r).Clear(); err != nil {
		respondAppError(w, h.log, "logout", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Logged out"})
}
