package models

import "time"

// ClaimStatus is the admission outcome stored on a claim
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimAccepted ClaimStatus = "accepted"
)

// Claim is a recipient's reservation against a post, in the post's unit.
// Quantities are stored in thousandths of a unit.
// At most one claim exists per (post_id, user_id).
type Claim struct {
	ID              int64       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID          int64       `gorm:"not null;uniqueIndex:idx_claims_post_user;column:post_id" json:"post_id"`
	UserID          int64       `gorm:"not null;uniqueIndex:idx_claims_post_user;index;column:user_id" json:"user_id"`
	ClaimedQuantity Quantity    `gorm:"type:bigint;not null;column:claimed_quantity" json:"claimed_quantity"`
	Status          ClaimStatus `gorm:"type:varchar(16);not null;column:status" json:"status"`
	ClaimedAt       time.Time   `gorm:"not null;column:claimed_at" json:"claimed_at"`

	Post *Post `gorm:"foreignKey:PostID;references:ID" json:"-"`
}

// TableName specifies the table name for Claim
func (Claim) TableName() string {
	return "claims"
}

// PostClaimTotal is one row of the per-post claim aggregation
type PostClaimTotal struct {
	PostID       int64    `gorm:"column:post_id"`
	TotalClaimed Quantity `gorm:"column:total_claimed"`
}
