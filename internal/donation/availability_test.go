package donation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/foodshare/foodshare/internal/models"
)

func TestComputeAvailability(t *testing.T) {
	post := &models.Post{ID: 1, QuantityValue: qty(10)}
	claim := func(postID int64, claimed float64, status models.ClaimStatus) *models.Claim {
		return &models.Claim{PostID: postID, ClaimedQuantity: qty(claimed), Status: status}
	}

	tests := []struct {
		name   string
		claims []*models.Claim
		want   Availability
	}{
		{
			name: "no claims",
			want: Availability{TotalClaimed: qty(0), LeftoverQuantity: qty(10), IsAvailable: true},
		},
		{
			name:   "partially claimed",
			claims: []*models.Claim{claim(1, 4, models.ClaimAccepted)},
			want:   Availability{TotalClaimed: qty(4), LeftoverQuantity: qty(6), IsAvailable: true},
		},
		{
			name:   "pending claims count",
			claims: []*models.Claim{claim(1, 4, models.ClaimAccepted), claim(1, 6, models.ClaimPending)},
			want:   Availability{TotalClaimed: qty(10), LeftoverQuantity: qty(0), IsAvailable: false},
		},
		{
			name:   "over committed is not clamped",
			claims: []*models.Claim{claim(1, 7, models.ClaimAccepted), claim(1, 5, models.ClaimAccepted)},
			want:   Availability{TotalClaimed: qty(12), LeftoverQuantity: qty(-2), IsAvailable: false},
		},
		{
			name:   "claims of other posts ignored",
			claims: []*models.Claim{claim(2, 9, models.ClaimAccepted), nil, claim(1, 2.5, models.ClaimAccepted)},
			want:   Availability{TotalClaimed: qty(2.5), LeftoverQuantity: qty(7.5), IsAvailable: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAvailability(post, tt.claims)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ComputeAvailability() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeAvailabilityExactDecimals(t *testing.T) {
	post := &models.Post{ID: 1, QuantityValue: qty(0.3)}
	got := ComputeAvailability(post, []*models.Claim{
		{PostID: 1, ClaimedQuantity: qty(0.1)},
		{PostID: 1, ClaimedQuantity: qty(0.2)},
	})
	want := Availability{TotalClaimed: qty(0.3), LeftoverQuantity: 0, IsAvailable: false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeAvailability() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpiryLabel(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   string
	}{
		{"expired", now.Add(-time.Minute), "Expired"},
		{"under an hour", now.Add(30 * time.Minute), "0 hours left"},
		{"hours", now.Add(5*time.Hour + 10*time.Minute), "5 hours left"},
		{"just under a day", now.Add(23 * time.Hour), "23 hours left"},
		{"days", now.Add(50 * time.Hour), "2 days left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiryLabel(tt.expiry, now); got != tt.want {
				t.Errorf("ExpiryLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
