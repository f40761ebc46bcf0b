package model

import "time"

// Stock movement types.
const (
	MovementOrderCommit  = "order_commit"
	MovementOrderRelease = "order_release"
	MovementManual       = "manual_adjustment"
)

// StockMovement is the append-only audit row written for every applied
// stock delta.
type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	OrgID          string    `db:"org_id" json:"org_id"`
	ProductID      *string   `db:"product_id" json:"product_id"`
	GroupID        *string   `db:"group_id" json:"group_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int64     `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int64     `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int64     `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StockAdjustment reports one applied delta back to the caller. GroupID is
// set when the authoritative counter was a merged group's shared pool.
type StockAdjustment struct {
	ProductID     string  `json:"product_id"`
	GroupID       *string `json:"group_id,omitempty"`
	PreviousStock int64   `json:"previous_stock"`
	NewStock      int64   `json:"new_stock"`
	Quantity      int64   `json:"quantity"`
}
