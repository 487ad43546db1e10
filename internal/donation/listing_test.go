package donation

import (
	"context"
	"testing"
	"time"

	"github.com/foodshare/foodshare/internal/models"
)

func TestListPostsNewestFirstWithAvailability(t *testing.T) {
	repo := setupTestRepo(t)
	claims := NewClaimService(repo, nil, nil)
	listing := NewListingService(repo, nil)
	ctx := context.Background()

	older := createTestPost(t, repo, "Pulao", 4)
	newer := createTestPost(t, repo, "Idli", 12)

	if _, err := claims.SubmitClaim(ctx, idString(older.ID), "3", qty(4)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := claims.SubmitClaim(ctx, idString(newer.ID), "4", qty(2)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	posts, err := listing.ListPosts(ctx, "3")
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != newer.ID {
		t.Errorf("expected newest post first, got %d", posts[0].ID)
	}

	if posts[0].LeftoverQuantity != qty(10) || !posts[0].IsAvailable {
		t.Errorf("newer: leftover=%v available=%v", posts[0].LeftoverQuantity, posts[0].IsAvailable)
	}
	if posts[0].UserClaimStatus != nil {
		t.Errorf("viewer has not claimed newer post, got status %v", *posts[0].UserClaimStatus)
	}

	if posts[1].LeftoverQuantity != qty(0) || posts[1].IsAvailable {
		t.Errorf("older: leftover=%v available=%v", posts[1].LeftoverQuantity, posts[1].IsAvailable)
	}
	if posts[1].UserClaimStatus == nil || *posts[1].UserClaimStatus != models.ClaimAccepted {
		t.Errorf("expected accepted status on older post")
	}
}

func TestListPostsInvalidViewerIsAnonymous(t *testing.T) {
	repo := setupTestRepo(t)
	claims := NewClaimService(repo, nil, nil)
	listing := NewListingService(repo, nil)
	ctx := context.Background()

	post := createTestPost(t, repo, "Poha", 3)
	if _, err := claims.SubmitClaim(ctx, idString(post.ID), "1", qty(1)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	for _, viewer := range []string{"", "abc", "-1", "0"} {
		posts, err := listing.ListPosts(ctx, viewer)
		if err != nil {
			t.Fatalf("viewer %q: %v", viewer, err)
		}
		if len(posts) != 1 {
			t.Fatalf("viewer %q: expected 1 post, got %d", viewer, len(posts))
		}
		if posts[0].UserClaimStatus != nil {
			t.Errorf("viewer %q: expected no claim status", viewer)
		}
		if posts[0].LeftoverQuantity != qty(2) {
			t.Errorf("viewer %q: expected leftover 2, got %v", viewer, posts[0].LeftoverQuantity)
		}
	}
}

func TestListPostsExpiry(t *testing.T) {
	repo := setupTestRepo(t)
	listing := NewListingService(repo, nil)
	post := createTestPost(t, repo, "Upma", 3)

	listing.now = func() time.Time { return post.ExpiryTimer.Add(time.Hour) }

	posts, err := listing.ListPosts(context.Background(), "")
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if !posts[0].IsExpired || posts[0].ExpiryLabel != "Expired" {
		t.Errorf("expected expired post, got expired=%v label=%q", posts[0].IsExpired, posts[0].ExpiryLabel)
	}
	if !posts[0].IsAvailable {
		t.Error("expiry must not affect availability")
	}
}

func TestListPostsEmpty(t *testing.T) {
	listing := NewListingService(setupTestRepo(t), nil)

	posts, err := listing.ListPosts(context.Background(), "1")
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}
