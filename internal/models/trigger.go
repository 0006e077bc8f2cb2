package models

import (
	"encoding/json"
	"time"
)

// TriggerEndpoint is one declared "run alert checks now" job.
type TriggerEndpoint struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

type TriggerResult struct {
	Name     string          `json:"name"`
	Endpoint string          `json:"endpoint"`
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
}

// TriggerReport lists results in declaration order.
type TriggerReport struct {
	Results    []TriggerResult `json:"results"`
	AllSuccess bool            `json:"all_success"`
	HasErrors  bool            `json:"has_errors"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   string          `json:"duration"`
}

// CronResponse is what the backend's cron endpoints answer with.
type CronResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}
