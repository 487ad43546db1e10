package donation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

// ClaimService admits claims against posts and lists a user's claims
type ClaimService struct {
	repo     *db.Repository
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	notifier Notifier
	now      func() time.Time
}

// NewClaimService creates a claim service. metrics and notifier may be nil.
func NewClaimService(repo *db.Repository, metrics *telemetry.Metrics, notifier Notifier) *ClaimService {
	return &ClaimService{
		repo:     repo,
		logger:   logging.WithComponent("claims"),
		metrics:  metrics,
		notifier: notifierOrNop(notifier),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitClaim admits a claim of requested units from postID for userID.
//
// The duplicate check, the leftover computation and the insert run in one
// transaction with the post row locked, so concurrent submissions against a
// post are serialised and admitted claims never exceed quantity_value.
func (s *ClaimService) SubmitClaim(ctx context.Context, postID, userID string, requested models.Quantity) (*models.Claim, error) {
	ctx, span := telemetry.StartSpan(ctx, "claims.submit")
	defer span.End()

	claim, post, err := s.admit(ctx, postID, userID, requested)
	if err != nil {
		kind := KindOf(err)
		span.SetAttributes(attribute.String("rejected", string(kind)))
		s.metrics.ClaimRejected(ctx, string(kind))
		if kind == KindStorageFailure {
			s.logger.Error("Claim admission failed",
				zap.String("post_id", postID),
				zap.String("user_id", userID),
				zap.Error(errors.Unwrap(err)))
		}
		return nil, err
	}

	s.metrics.ClaimAdmitted(ctx, claim.ClaimedQuantity.Float64(), string(post.QuantityType))
	s.notifier.Notify("claim", "created", claim.PostID, map[string]interface{}{
		"post_id":          claim.PostID,
		"claimed_quantity": claim.ClaimedQuantity,
	})
	s.logger.Info("Claim admitted",
		zap.Int64("claim_id", claim.ID),
		zap.Int64("post_id", claim.PostID),
		zap.Int64("user_id", claim.UserID),
		zap.Stringer("quantity", claim.ClaimedQuantity))

	return claim, nil
}

func (s *ClaimService) admit(ctx context.Context, postIDRaw, userIDRaw string, requested models.Quantity) (*models.Claim, *models.Post, error) {
	userID, ok := ParseID(userIDRaw)
	if !ok {
		return nil, nil, invalidUser(userIDRaw)
	}
	if requested <= 0 {
		return nil, nil, validationError("quantity must be a positive number")
	}
	postID, ok := ParseID(postIDRaw)
	if !ok {
		return nil, nil, postNotFound(postIDRaw)
	}

	var (
		claim *models.Claim
		post  *models.Post
	)
	err := s.repo.Transaction(ctx, func(tx *db.Repository) error {
		var err error
		post, err = db.NewPostRepository(tx).LockByID(ctx, postID)
		if err != nil {
			return storageFailure(err)
		}
		if post == nil {
			return postNotFound(postIDRaw)
		}

		claims := db.NewClaimRepository(tx)
		existing, err := claims.GetByPostAndUser(ctx, postID, userID)
		if err != nil {
			return storageFailure(err)
		}
		if existing != nil {
			return duplicateClaim()
		}

		current, err := claims.ListByPost(ctx, postID)
		if err != nil {
			return storageFailure(err)
		}
		avail := ComputeAvailability(post, current)
		if requested > avail.LeftoverQuantity {
			return insufficientQuantity(avail.LeftoverQuantity, requested, string(post.QuantityType))
		}

		claim = &models.Claim{
			PostID:          postID,
			UserID:          userID,
			ClaimedQuantity: requested,
			Status:          admissionStatus(requested, avail.LeftoverQuantity),
			ClaimedAt:       s.now(),
		}
		if err := claims.Create(ctx, claim); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return duplicateClaim()
			}
			return storageFailure(err)
		}
		return nil
	})
	if err != nil {
		var de *Error
		if !errors.As(err, &de) {
			// commit failure
			err = storageFailure(err)
		}
		return nil, nil, err
	}
	return claim, post, nil
}

// admissionStatus decides the stored status of an admitted claim. A claim
// larger than the leftover would be pending, but admission rejects those
// before this point, so every stored claim is accepted. The split stays
// explicit until partial fulfilment is decided.
func admissionStatus(requested, leftover models.Quantity) models.ClaimStatus {
	if requested > leftover {
		return models.ClaimPending
	}
	return models.ClaimAccepted
}

// PostSummary is the part of a post shown next to a user's claim
type PostSummary struct {
	ID           int64               `json:"post_id"`
	FoodName     string              `json:"food_name"`
	QuantityType models.QuantityType `json:"quantity_type"`
	Image        string              `json:"image,omitempty"`
	ExpiryTimer  time.Time           `json:"expiry_timer"`
	Address      *string             `json:"address,omitempty"`
}

// UserClaim is a claim joined with its post summary
type UserClaim struct {
	*models.Claim
	Post *PostSummary `json:"post,omitempty"`
}

// ListUserClaims returns the claims of userID, newest first
func (s *ClaimService) ListUserClaims(ctx context.Context, userIDRaw string) ([]UserClaim, error) {
	ctx, span := telemetry.StartSpan(ctx, "claims.list_user")
	defer span.End()

	userID, ok := ParseID(userIDRaw)
	if !ok {
		return nil, invalidUser(userIDRaw)
	}

	claims, err := db.NewClaimRepository(s.repo).ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Listing user claims failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, storageFailure(err)
	}

	out := make([]UserClaim, 0, len(claims))
	for _, c := range claims {
		uc := UserClaim{Claim: c}
		if p := c.Post; p != nil {
			uc.Post = &PostSummary{
				ID:           p.ID,
				FoodName:     p.FoodName,
				QuantityType: p.QuantityType,
				ExpiryTimer:  p.ExpiryTimer,
				Address:      p.Address,
			}
			if len(p.Image) > 0 {
				uc.Post.Image = p.Image[0]
			}
		}
		out = append(out, uc)
	}
	return out, nil
}
