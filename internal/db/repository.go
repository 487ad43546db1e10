package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodshare/foodshare/internal/models"
)

// ErrDuplicate is returned when a write violates a unique index
var ErrDuplicate = errors.New("duplicate record")

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction. The repository handed
// to fn is bound to the transaction; fn must not use the outer repository.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) supportsRowLocks() bool {
	return r.db.Dialector.Name() == "postgres"
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// LockByID retrieves a post and, on PostgreSQL, holds a row lock on it until
// the surrounding transaction ends.
func (r *PostRepository) LockByID(ctx context.Context, id int64) (*models.Post, error) {
	q := r.db.WithContext(ctx)
	if r.supportsRowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var post models.Post
	if err := q.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// List retrieves all posts, newest first
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Order("post_id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Count returns the number of stored posts
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

// ClaimRepository provides claim-related database operations
type ClaimRepository struct {
	*Repository
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(repo *Repository) *ClaimRepository {
	return &ClaimRepository{Repository: repo}
}

// Create inserts a claim. A second claim for the same post and user fails
// with ErrDuplicate.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	return translate(r.db.WithContext(ctx).Create(claim).Error)
}

// ListByPost retrieves every claim against a post
func (r *ClaimRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// GetByPostAndUser retrieves the claim a user holds on a post
func (r *ClaimRepository) GetByPostAndUser(ctx context.Context, postID, userID int64) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// TotalsByPost sums claimed_quantity per post in one grouped query.
// Posts without claims are absent from the result.
func (r *ClaimRepository) TotalsByPost(ctx context.Context, postIDs []int64) (map[int64]models.Quantity, error) {
	totals := make(map[int64]models.Quantity, len(postIDs))
	if len(postIDs) == 0 {
		return totals, nil
	}

	var rows []models.PostClaimTotal
	if err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Select("post_id, CAST(SUM(claimed_quantity) AS BIGINT) AS total_claimed").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.PostID] = row.TotalClaimed
	}
	return totals, nil
}

// StatusesForUser returns the claim status a user holds on each of the given posts
func (r *ClaimRepository) StatusesForUser(ctx context.Context, userID int64, postIDs []int64) (map[int64]models.ClaimStatus, error) {
	statuses := make(map[int64]models.ClaimStatus)
	if len(postIDs) == 0 {
		return statuses, nil
	}

	var claims []models.Claim
	if err := r.db.WithContext(ctx).
		Select("post_id", "status").
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&claims).Error; err != nil {
		return nil, err
	}

	for _, c := range claims {
		statuses[c.PostID] = c.Status
	}
	return statuses, nil
}

// ListByUser retrieves a user's claims with their posts, newest first
func (r *ClaimRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Claim, error) {
	var claims []*models.Claim
	if err := r.db.WithContext(ctx).
		Preload("Post").
		Where("user_id = ?", userID).
		Order("claimed_at DESC").
		Order("id DESC").
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// UserRepository provides account-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user. An already registered email fails with ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}
