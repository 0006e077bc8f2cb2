package models

import "encoding/json"

// RuleResponse is the backend's single-rule payload.
type RuleResponse struct {
	Data    *WireRule `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	RuleID  *int64    `json:"rule_id,omitempty"`
	Error   string    `json:"error,omitempty"`
	Details string    `json:"details,omitempty"`
}

// RuleListResponse is the backend's listing payload.
type RuleListResponse struct {
	Data        []WireRule `json:"data,omitempty"`
	Count       *int       `json:"count,omitempty"`
	AccountName string     `json:"account_name,omitempty"`
	Scope       Scope      `json:"scope,omitempty"`
	Error       string     `json:"error,omitempty"`
	Details     string     `json:"details,omitempty"`
}

type RuleStats struct {
	TotalRules    int `json:"total_rules"`
	ActiveRules   int `json:"active_rules"`
	InactiveRules int `json:"inactive_rules"`
}

type StatsResponse struct {
	Data    *RuleStats `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
	Details string     `json:"details,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type AuthData struct {
	User  json.RawMessage `json:"user,omitempty"`
	Token string          `json:"token"`
}

// AuthResponse is the login/signup payload.
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// APIError is the body of failures the console produces itself.
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
