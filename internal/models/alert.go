package models

import "time"

// Alert represents a user-defined price alert.
type Alert struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Symbol     string    `json:"symbol"`
	AlertPrice float64   `json:"alert_price"`
	Direction  Direction `json:"direction"`
	Label      string    `json:"label"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// AlertRule is the input used to create an alert.
type AlertRule struct {
	Symbol     string    `json:"symbol"`
	AlertPrice float64   `json:"alert_price"`
	Direction  Direction `json:"direction"`
	Label      string    `json:"label"`
}

// AlertContext is the market context captured when an alert fires.
type AlertContext struct {
	Price       float64                     `json:"price"`
	Sentiment   Optional[SentimentSnapshot] `json:"sentiment"`
	Positioning Optional[PositioningBias]   `json:"positioning"`
}

// TriggeredAlert is the notification record produced when an alert fires.
// Its ID is the source alert's ID.
type TriggeredAlert struct {
	ID         string       `json:"id"`
	Symbol     string       `json:"symbol"`
	Label      string       `json:"label"`
	Direction  Direction    `json:"direction"`
	AlertPrice float64      `json:"alert_price"`
	Message    string       `json:"message"`
	Caution    string       `json:"caution"`
	Timestamp  time.Time    `json:"timestamp"`
	Context    AlertContext `json:"context"`
}
