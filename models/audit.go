package models

import "time"

// AuditStatus is the derived classification of one counted line.
type AuditStatus string

const (
	AuditStatusPending AuditStatus = "pending"
	AuditStatusMatch   AuditStatus = "match"
	AuditStatusSurplus AuditStatus = "surplus"
	AuditStatusDeficit AuditStatus = "deficit"
)

// AuditItem is one line of a stock-count session.
// Difference and Status are derived from the two quantities and must be
// recomputed whenever ActualQuantity changes.
type AuditItem struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Unit           string      `json:"unit,omitempty"`
	SystemQuantity int         `json:"system_quantity"`
	ActualQuantity int         `json:"actual_quantity"`
	Difference     int         `json:"difference"`
	Status         AuditStatus `json:"status"`
}

// AuditSession groups the items counted together.
type AuditSession struct {
	ID          string      `json:"id"`
	StartedBy   string      `json:"started_by,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Items       []AuditItem `json:"items"`
}

// Closed reports whether the session has already been saved.
func (s AuditSession) Closed() bool {
	return s.CompletedAt != nil
}
