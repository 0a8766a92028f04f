package model

import "time"

// Submission is one journaled order submission attempt. The bridge payload
// itself is never journaled because it carries the signing key.
type Submission struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TokenID       string    `json:"token_id"`
	Side          string    `json:"side"`
	OrderType     string    `json:"order_type"`
	SignatureType string    `json:"signature_type"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	LatencyMs     int64     `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
