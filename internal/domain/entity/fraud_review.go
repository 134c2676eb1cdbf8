package entity

import "time"

// Fraud review statuses
const (
	FraudReviewPending = "pending"
	FraudReviewCleared = "cleared"
	FraudReviewBlocked = "blocked"
)

type FraudReview struct {
	ID         string    `json:"id" firestore:"id"`
	EntityType string    `json:"entity_type" firestore:"entityType"` // "listing", "user"
	EntityID   string    `json:"entity_id" firestore:"entityId"`
	Score      float64   `json:"score" firestore:"score"`
	RiskLevel  string    `json:"risk_level" firestore:"riskLevel"` // low, medium, high, critical
	Flags      []string  `json:"flags" firestore:"flags"`
	Reasons    []string  `json:"reasons" firestore:"reasons"`
	Status     string    `json:"status" firestore:"status"`
	ReviewedBy string    `json:"reviewed_by,omitempty" firestore:"reviewedBy,omitempty"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
