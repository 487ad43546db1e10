package donation

import (
	"context"
	"testing"
	"time"

	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/models"
)

func setupTestRepo(t *testing.T) *db.Repository {
	t.Helper()
	d, err := db.NewInMemory()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return db.NewRepository(d.DB)
}

// qty converts a literal such as 2.5 to an exact quantity
func qty(f float64) models.Quantity {
	q, err := models.QuantityFromFloat(f)
	if err != nil {
		panic(err)
	}
	return q
}

func createTestPost(t *testing.T, repo *db.Repository, name string, quantity float64) *models.Post {
	t.Helper()
	p := &models.Post{
		FoodName:        name,
		FoodType:        models.FoodTypeVeg,
		QuantityValue:   qty(quantity),
		QuantityType:    models.QuantityPlates,
		ExpiryTimer:     time.Now().Add(6 * time.Hour).UTC(),
		FreshnessStatus: models.FreshnessFreshCooked,
		Image:           []string{"https://cdn.test/1.jpg"},
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.NewPostRepository(repo).Create(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

type recordedEvent struct {
	entity, action string
	id             int64
}

type recordingNotifier struct {
	events []recordedEvent
}

func (n *recordingNotifier) Notify(entity, action string, id int64, _ map[string]interface{}) {
	n.events = append(n.events, recordedEvent{entity, action, id})
}
