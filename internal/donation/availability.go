package donation

import (
	"fmt"
	"time"

	"github.com/foodshare/foodshare/internal/models"
)

// Availability is the derived stock of a post
type Availability struct {
	TotalClaimed     models.Quantity `json:"totalClaimed"`
	LeftoverQuantity models.Quantity `json:"leftoverQuantity"`
	IsAvailable      bool            `json:"isAvailable"`
}

// ComputeAvailability derives leftover quantity from a post and its claims.
// Claims of every status count. Claims that belong to another post are
// skipped. The leftover is not clamped: over-commitment shows as negative.
func ComputeAvailability(post *models.Post, claims []*models.Claim) Availability {
	var total models.Quantity
	for _, c := range claims {
		if c == nil || c.PostID != post.ID {
			continue
		}
		total += c.ClaimedQuantity
	}
	return AvailabilityFromTotal(post.QuantityValue, total)
}

// AvailabilityFromTotal is ComputeAvailability over an already summed total
func AvailabilityFromTotal(quantity, totalClaimed models.Quantity) Availability {
	leftover := quantity - totalClaimed
	return Availability{
		TotalClaimed:     totalClaimed,
		LeftoverQuantity: leftover,
		IsAvailable:      leftover > 0,
	}
}

// ExpiryLabel renders the time left before expiry the way listings show it
func ExpiryLabel(expiry, now time.Time) string {
	left := expiry.Sub(now)
	if left < 0 {
		return "Expired"
	}
	hours := int(left / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%d hours left", hours)
	}
	return fmt.Sprintf("%d days left", hours/24)
}
