package donation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/cache"
	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

// AnnotatedPost is a post as one viewer sees it
type AnnotatedPost struct {
	*models.Post
	LeftoverQuantity models.Quantity     `json:"leftoverQuantity"`
	IsAvailable      bool                `json:"isAvailable"`
	UserClaimStatus  *models.ClaimStatus `json:"userClaimStatus,omitempty"`
	IsExpired        bool                `json:"isExpired"`
	ExpiryLabel      string              `json:"expiryLabel"`
}

// ListingService projects posts with their availability for a viewer
type ListingService struct {
	repo    *db.Repository
	catalog *cache.PostCatalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewListingService creates a listing service. catalog may be nil.
func NewListingService(repo *db.Repository, catalog *cache.PostCatalog) *ListingService {
	if catalog == nil {
		catalog = cache.NewPostCatalog(nil, 0)
	}
	return &ListingService{
		repo:    repo,
		catalog: catalog,
		logger:  logging.WithComponent("listing"),
		now:     time.Now,
	}
}

// ListPosts returns every post, newest first, with leftover quantity and
// availability. When viewerID parses, each post also carries the viewer's
// own claim status; an invalid viewerID silently yields the anonymous view.
//
// Claim totals and viewer statuses are loaded with one query each,
// whatever the number of posts.
func (s *ListingService) ListPosts(ctx context.Context, viewerID string) ([]AnnotatedPost, error) {
	ctx, span := telemetry.StartSpan(ctx, "listing.list_posts")
	defer span.End()

	posts, err := s.posts(ctx)
	if err != nil {
		s.logger.Error("Listing posts failed", zap.Error(err))
		return nil, storageFailure(err)
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	claims := db.NewClaimRepository(s.repo)
	totals, err := claims.TotalsByPost(ctx, ids)
	if err != nil {
		s.logger.Error("Loading claim totals failed", zap.Error(err))
		return nil, storageFailure(err)
	}

	var statuses map[int64]models.ClaimStatus
	if uid, ok := ParseID(viewerID); ok {
		statuses, err = claims.StatusesForUser(ctx, uid, ids)
		if err != nil {
			s.logger.Error("Loading viewer claims failed", zap.Int64("viewer_id", uid), zap.Error(err))
			return nil, storageFailure(err)
		}
	}

	now := s.now()
	out := make([]AnnotatedPost, len(posts))
	for i, p := range posts {
		avail := AvailabilityFromTotal(p.QuantityValue, totals[p.ID])
		ap := AnnotatedPost{
			Post:             p,
			LeftoverQuantity: avail.LeftoverQuantity,
			IsAvailable:      avail.IsAvailable,
			IsExpired:        p.ExpiryTimer.Before(now),
			ExpiryLabel:      ExpiryLabel(p.ExpiryTimer, now),
		}
		if status, ok := statuses[p.ID]; ok {
			ap.UserClaimStatus = &status
		}
		out[i] = ap
	}
	return out, nil
}

func (s *ListingService) posts(ctx context.Context) ([]*models.Post, error) {
	if posts, ok := s.catalog.Get(ctx); ok {
		return posts, nil
	}
	posts, err := db.NewPostRepository(s.repo).List(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog.Put(ctx, posts)
	return posts, nil
}
