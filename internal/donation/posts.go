package donation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/cache"
	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/internal/upload"
	"github.com/foodshare/foodshare/pkg/logging"
	"github.com/foodshare/foodshare/pkg/telemetry"
)

// ImageInput is one image attached to a new post
type ImageInput struct {
	Data        []byte
	ContentType string
}

const discardTimeout = 10 * time.Second

// CreatePostInput carries the fields of a new donation
type CreatePostInput struct {
	FoodName        string
	FoodType        models.FoodType
	QuantityValue   models.Quantity
	QuantityType    models.QuantityType
	ExpiryTimer     time.Time
	FreshnessStatus models.FreshnessStatus
	Address         string
	Images          []ImageInput
}

// PostService creates posts
type PostService struct {
	repo     *db.Repository
	uploader upload.Uploader
	catalog  *cache.PostCatalog
	metrics  *telemetry.Metrics
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewPostService creates a post service. catalog, metrics and notifier may be nil.
func NewPostService(repo *db.Repository, uploader upload.Uploader, catalog *cache.PostCatalog, metrics *telemetry.Metrics, notifier Notifier) *PostService {
	if catalog == nil {
		catalog = cache.NewPostCatalog(nil, 0)
	}
	return &PostService{
		repo:     repo,
		uploader: uploader,
		catalog:  catalog,
		metrics:  metrics,
		notifier: notifierOrNop(notifier),
		logger:   logging.WithComponent("posts"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost validates in, uploads its images in order and persists the post.
// The post row is written only after every image has been uploaded.
func (s *PostService) CreatePost(ctx context.Context, donor Viewer, in CreatePostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "posts.create")
	defer span.End()

	if donor.ID <= 0 {
		return nil, Unauthenticated()
	}
	if donor.Role != models.RoleDonor {
		return nil, forbidden("only donors can create posts")
	}
	if err := validatePost(&in); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(in.Images))
	for i, img := range in.Images {
		url, err := s.uploader.Upload(ctx, img.Data, img.ContentType)
		if err != nil {
			s.logger.Warn("Image upload failed",
				zap.Int("image", i+1),
				zap.Int("images", len(in.Images)),
				zap.Error(err))
			span.SetAttributes(attribute.Int("failed_image", i+1))
			s.discardUploads(ctx, urls)
			return nil, uploadFailure(i+1, err)
		}
		urls = append(urls, url)
	}

	donorID := donor.ID
	post := &models.Post{
		FoodName:        strings.TrimSpace(in.FoodName),
		FoodType:        in.FoodType,
		QuantityValue:   in.QuantityValue,
		QuantityType:    in.QuantityType,
		ExpiryTimer:     in.ExpiryTimer.UTC(),
		FreshnessStatus: in.FreshnessStatus,
		Image:           urls,
		DonorID:         &donorID,
		CreatedAt:       s.now(),
	}
	if addr := strings.TrimSpace(in.Address); addr != "" {
		post.Address = &addr
	}

	if err := db.NewPostRepository(s.repo).Create(ctx, post); err != nil {
		s.logger.Error("Saving post failed", zap.String("food_name", post.FoodName), zap.Error(err))
		return nil, storageFailure(err)
	}

	s.catalog.Invalidate(ctx)
	s.metrics.PostCreated(ctx, string(post.FoodType))
	s.notifier.Notify("post", "created", post.ID, map[string]interface{}{
		"food_name": post.FoodName,
	})
	s.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("donor_id", donorID),
		zap.Int("images", len(urls)))

	return post, nil
}

// discardUploads removes images uploaded before a failed one. Removal is
// best effort; anything left behind is logged so it can be cleaned up by hand.
func (s *PostService) discardUploads(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	remover, ok := s.uploader.(upload.Remover)
	if !ok {
		s.logger.Warn("Orphaned uploaded images", zap.Strings("urls", urls))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()

	var orphaned []string
	for _, url := range urls {
		if err := remover.Remove(ctx, url); err != nil {
			s.logger.Warn("Removing uploaded image failed", zap.String("url", url), zap.Error(err))
			orphaned = append(orphaned, url)
		}
	}
	if len(orphaned) > 0 {
		s.logger.Warn("Orphaned uploaded images", zap.Strings("urls", orphaned))
	}
}

func validatePost(in *CreatePostInput) error {
	switch {
	case strings.TrimSpace(in.FoodName) == "":
		return validationError("food_name is required")
	case in.FoodType == "":
		return validationError("food_type is required")
	case !in.FoodType.Valid():
		return validationError("food_type must be veg or nonveg")
	case in.QuantityValue <= 0:
		return validationError("quantity_value must be a positive number")
	case in.QuantityType == "":
		return validationError("quantity_type is required")
	case !in.QuantityType.Valid():
		return validationError("quantity_type must be plates, kg or items")
	case in.ExpiryTimer.IsZero():
		return validationError("expiry_timer is required")
	case in.FreshnessStatus == "":
		return validationError("freshness_status is required")
	case !in.FreshnessStatus.Valid():
		return validationError("freshness_status must be freshcooked, packaged, near_expiry or unknown")
	case len(in.Images) == 0:
		return validationError("at least one image is required")
	}
	return nil
}
