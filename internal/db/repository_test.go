package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/foodshare/foodshare/internal/models"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	d, err := NewInMemory()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewRepository(d.DB)
}

func qty(f float64) models.Quantity {
	q, err := models.QuantityFromFloat(f)
	if err != nil {
		panic(err)
	}
	return q
}

func newPost(name string, quantity float64) *models.Post {
	return &models.Post{
		FoodName:        name,
		FoodType:        models.FoodTypeVeg,
		QuantityValue:   qty(quantity),
		QuantityType:    models.QuantityPlates,
		ExpiryTimer:     time.Now().Add(4 * time.Hour),
		FreshnessStatus: models.FreshnessFreshCooked,
		Image:           datatypes.JSONSlice[string]{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"},
	}
}

func newClaim(postID, userID int64, quantity float64) *models.Claim {
	return &models.Claim{
		PostID:          postID,
		UserID:          userID,
		ClaimedQuantity: qty(quantity),
		Status:          models.ClaimAccepted,
		ClaimedAt:       time.Now().UTC(),
	}
}

func TestPostCreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	posts := NewPostRepository(repo)
	ctx := context.Background()

	p := newPost("Biryani", 10)
	if err := posts.Create(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := posts.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got == nil {
		t.Fatal("expected post, got nil")
	}
	if got.FoodName != "Biryani" {
		t.Errorf("food_name = %q, want %q", got.FoodName, "Biryani")
	}
	if len(got.Image) != 2 || got.Image[1] != "https://cdn.test/b.jpg" {
		t.Errorf("image = %v, want two urls in order", got.Image)
	}
}

func TestPostGetMissing(t *testing.T) {
	posts := NewPostRepository(setupTestRepo(t))

	got, err := posts.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing post, got %+v", got)
	}

	locked, err := posts.LockByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("lock post: %v", err)
	}
	if locked != nil {
		t.Errorf("expected nil for missing post, got %+v", locked)
	}
}

func TestPostListNewestFirst(t *testing.T) {
	posts := NewPostRepository(setupTestRepo(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if err := posts.Create(ctx, newPost(name, 1)); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	list, err := posts.List(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].FoodName != "third" || list[2].FoodName != "first" {
		t.Errorf("order = %s,%s,%s; want third,second,first", list[0].FoodName, list[1].FoodName, list[2].FoodName)
	}
}

func TestClaimTotalsByPost(t *testing.T) {
	repo := setupTestRepo(t)
	posts := NewPostRepository(repo)
	claims := NewClaimRepository(repo)
	ctx := context.Background()

	a, b, c := newPost("a", 10), newPost("b", 5), newPost("c", 3)
	for _, p := range []*models.Post{a, b, c} {
		if err := posts.Create(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	for _, cl := range []*models.Claim{
		newClaim(a.ID, 1, 4),
		newClaim(a.ID, 2, 2.5),
		newClaim(b.ID, 1, 5),
	} {
		if err := claims.Create(ctx, cl); err != nil {
			t.Fatalf("create claim: %v", err)
		}
	}

	totals, err := claims.TotalsByPost(ctx, []int64{a.ID, b.ID, c.ID})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[a.ID] != qty(6.5) {
		t.Errorf("total[a] = %v, want 6.5", totals[a.ID])
	}
	if totals[b.ID] != models.Units(5) {
		t.Errorf("total[b] = %v, want 5", totals[b.ID])
	}
	if _, ok := totals[c.ID]; ok {
		t.Errorf("expected no total for unclaimed post, got %v", totals[c.ID])
	}

	empty, err := claims.TotalsByPost(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("TotalsByPost(nil) = %v, %v; want empty, nil", empty, err)
	}
}

func TestClaimDuplicateRejectedByIndex(t *testing.T) {
	repo := setupTestRepo(t)
	posts := NewPostRepository(repo)
	claims := NewClaimRepository(repo)
	ctx := context.Background()

	p := newPost("a", 10)
	if err := posts.Create(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := claims.Create(ctx, newClaim(p.ID, 1, 1)); err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if err := claims.Create(ctx, newClaim(p.ID, 1, 1)); err == nil {
		t.Fatal("expected error for duplicate (post, user) claim, got nil")
	}

	list, err := claims.ListByPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len = %d, want 1", len(list))
	}
}

func TestClaimStatusesForUser(t *testing.T) {
	repo := setupTestRepo(t)
	posts := NewPostRepository(repo)
	claims := NewClaimRepository(repo)
	ctx := context.Background()

	a, b := newPost("a", 10), newPost("b", 10)
	for _, p := range []*models.Post{a, b} {
		if err := posts.Create(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if err := claims.Create(ctx, newClaim(a.ID, 7, 1)); err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if err := claims.Create(ctx, newClaim(b.ID, 8, 1)); err != nil {
		t.Fatalf("create claim: %v", err)
	}

	statuses, err := claims.StatusesForUser(ctx, 7, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if statuses[a.ID] != models.ClaimAccepted {
		t.Errorf("status[a] = %q, want accepted", statuses[a.ID])
	}
	if _, ok := statuses[b.ID]; ok {
		t.Errorf("expected no status for post claimed by someone else")
	}
}

func TestClaimListByUserNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	posts := NewPostRepository(repo)
	claims := NewClaimRepository(repo)
	ctx := context.Background()

	older, newer := newPost("older", 3), newPost("newer", 3)
	for _, p := range []*models.Post{older, newer} {
		if err := posts.Create(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	c1 := newClaim(older.ID, 5, 1)
	c1.ClaimedAt = time.Now().UTC().Add(-time.Hour)
	c2 := newClaim(newer.ID, 5, 2)
	for _, c := range []*models.Claim{c1, c2} {
		if err := claims.Create(ctx, c); err != nil {
			t.Fatalf("create claim: %v", err)
		}
	}

	list, err := claims.ListByUser(ctx, 5)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].PostID != newer.ID {
		t.Errorf("first claim post = %d, want %d", list[0].PostID, newer.ID)
	}
	if list[0].Post == nil || list[0].Post.FoodName != "newer" {
		t.Errorf("expected preloaded post, got %+v", list[0].Post)
	}
}

func TestTransactionRollback(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := repo.Transaction(ctx, func(tx *Repository) error {
		if err := NewPostRepository(tx).Create(ctx, newPost("rolled back", 1)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Transaction() error = %v, want sentinel", err)
	}

	n, err := NewPostRepository(repo).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	users := NewUserRepository(setupTestRepo(t))
	ctx := context.Background()

	u := &models.User{Email: "alice@example.com", PasswordHash: "x", Role: models.RoleDonor}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.Create(ctx, &models.User{Email: "alice@example.com", PasswordHash: "y", Role: models.RoleUser}); err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}

	got, err := users.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID || got.Role != models.RoleDonor {
		t.Errorf("GetByEmail = %+v, want id %d donor", got, u.ID)
	}

	missing, err := users.GetByEmail(ctx, "bob@example.com")
	if err != nil || missing != nil {
		t.Errorf("GetByEmail(missing) = %+v, %v; want nil, nil", missing, err)
	}
}
