package models

import (
	"time"

	"gorm.io/datatypes"
)

// FoodType is the dietary class of a donation
type FoodType string

const (
	FoodTypeVeg    FoodType = "veg"
	FoodTypeNonVeg FoodType = "nonveg"
)

// QuantityType is the unit a post's quantity and its claims are measured in
type QuantityType string

const (
	QuantityPlates QuantityType = "plates"
	QuantityKg     QuantityType = "kg"
	QuantityItems  QuantityType = "items"
)

// FreshnessStatus describes the state of the donated food
type FreshnessStatus string

const (
	FreshnessFreshCooked FreshnessStatus = "freshcooked"
	FreshnessPackaged    FreshnessStatus = "packaged"
	FreshnessNearExpiry  FreshnessStatus = "near_expiry"
	FreshnessUnknown     FreshnessStatus = "unknown"
)

// Valid reports whether t is a known food type
func (t FoodType) Valid() bool {
	return t == FoodTypeVeg || t == FoodTypeNonVeg
}

// Valid reports whether t is a known quantity unit
func (t QuantityType) Valid() bool {
	switch t {
	case QuantityPlates, QuantityKg, QuantityItems:
		return true
	}
	return false
}

// Valid reports whether s is a known freshness status
func (s FreshnessStatus) Valid() bool {
	switch s {
	case FreshnessFreshCooked, FreshnessPackaged, FreshnessNearExpiry, FreshnessUnknown:
		return true
	}
	return false
}

// Post is a donor's surplus-food listing. Rows are immutable once created.
type Post struct {
	ID              int64                       `gorm:"primaryKey;autoIncrement;column:post_id" json:"post_id"`
	FoodName        string                      `gorm:"type:varchar(255);not null;column:food_name" json:"food_name"`
	FoodType        FoodType                    `gorm:"type:varchar(16);not null;column:food_type" json:"food_type"`
	QuantityValue   Quantity                    `gorm:"type:bigint;not null;column:quantity_value" json:"quantity_value"`
	QuantityType    QuantityType                `gorm:"type:varchar(16);not null;column:quantity_type" json:"quantity_type"`
	ExpiryTimer     time.Time                   `gorm:"not null;column:expiry_timer" json:"expiry_timer"`
	FreshnessStatus FreshnessStatus             `gorm:"type:varchar(16);not null;column:freshness_status" json:"freshness_status"`
	Image           datatypes.JSONSlice[string] `gorm:"not null;column:image" json:"image"`
	Address         *string                     `gorm:"type:varchar(512);column:address" json:"address,omitempty"`
	DonorID         *int64                      `gorm:"index;column:donor_id" json:"donor_id,omitempty"`
	CreatedAt       time.Time                   `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
