package models

import "time"

const (
	EventRuleCreated      = "rule.created"
	EventRuleUpdated      = "rule.updated"
	EventRuleDeleted      = "rule.deleted"
	EventRuleActivated    = "rule.activated"
	EventRuleDeactivated  = "rule.deactivated"
	EventRulesBulkDeleted = "rule.bulk_deleted"
	EventTriggerResult    = "trigger.result"
	EventTriggerCompleted = "trigger.completed"
)

// Event is an audit/progress notification emitted by the console.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}
