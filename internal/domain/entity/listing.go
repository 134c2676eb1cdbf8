package entity

import "time"

// Listing statuses
const (
	ListingStatusDraft         = "draft"
	ListingStatusPendingReview = "pending_review"
	ListingStatusActive        = "active"
	ListingStatusFlagged       = "flagged"
	ListingStatusSold          = "sold"
	ListingStatusRented        = "rented"
)

// Listing is the single schema every read/write path shares. Zip and
// description are explicit optionals rather than fields that drift per form.
type Listing struct {
	ID          string   `json:"id" firestore:"id"`
	SellerID    string   `json:"seller_id" firestore:"sellerId"`
	AgentID     string   `json:"agent_id,omitempty" firestore:"agentId,omitempty"`
	Street      string   `json:"street" firestore:"street"`
	City        string   `json:"city" firestore:"city"`
	State       string   `json:"state" firestore:"state"`
	Zip         string   `json:"zip,omitempty" firestore:"zip,omitempty"`
	Description string   `json:"description,omitempty" firestore:"description,omitempty"`
	Price       float64  `json:"price" firestore:"price"`
	Rent        float64  `json:"rent" firestore:"rent"`
	Beds        int      `json:"beds,omitempty" firestore:"beds,omitempty"`
	Baths       float64  `json:"baths,omitempty" firestore:"baths,omitempty"`
	SquareFeet  int      `json:"square_feet,omitempty" firestore:"squareFeet,omitempty"`
	Photos      []string `json:"photos" firestore:"photos"` // ordered
	Status      string   `json:"status" firestore:"status"`
	Featured    bool     `json:"featured" firestore:"featured"`
	Views       int      `json:"views" firestore:"views"`

	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	// No omitempty: Create must write an explicit null so the repository's
	// IS_NULL soft-delete filter matches never-deleted documents.
	DeletedAt *time.Time `json:"deleted_at,omitempty" firestore:"deletedAt"`
}
