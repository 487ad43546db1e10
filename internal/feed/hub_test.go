package feed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/foodshare/foodshare/internal/donation"
)

var _ donation.Notifier = (*Hub)(nil)

func testSubscriber(hub *Hub) *Subscriber {
	return &Subscriber{hub: hub, queue: make(chan []byte, queueSize)}
}

func TestAddRemove(t *testing.T) {
	hub := NewHub()
	a, b := testSubscriber(hub), testSubscriber(hub)

	hub.add(a)
	hub.add(b)
	if got := hub.Subscribers(); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	hub.remove(a)
	hub.remove(a)
	if got := hub.Subscribers(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
	hub.remove(b)
}

func TestNotify(t *testing.T) {
	hub := NewHub()
	s := testSubscriber(hub)
	hub.add(s)
	defer hub.remove(s)

	hub.Notify("claim", "created", 7, map[string]interface{}{"claimed_quantity": 2.0})

	select {
	case data := <-s.queue:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != "claim_created" || ev.PostID != 7 {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.Extra["claimed_quantity"] != 2.0 {
			t.Errorf("unexpected extra %v", ev.Extra)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

func TestPublishFullQueueDrops(t *testing.T) {
	hub := NewHub()
	s := testSubscriber(hub)
	hub.add(s)
	defer hub.remove(s)

	for i := 0; i < queueSize+3; i++ {
		hub.Notify("post", "created", int64(i), nil)
	}
	if got := len(s.queue); got != queueSize {
		t.Errorf("expected queue to hold %d events, got %d", queueSize, got)
	}
}

func TestConcurrentPublish(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := testSubscriber(hub)
			hub.add(s)
			hub.Notify("post", "created", 1, nil)
			hub.remove(s)
		}()
	}
	wg.Wait()
	if got := hub.Subscribers(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:3000", "https://food.campus.test"})
	if len(got) != 2 || got[0] != "localhost:3000" || got[1] != "food.campus.test" {
		t.Errorf("unexpected patterns %v", got)
	}
	if got := originPatterns([]string{"http://a.test", "*"}); len(got) != 1 || got[0] != "*" {
		t.Errorf("wildcard should win, got %v", got)
	}
}

func TestHandlerDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/feed", Handler(hub, []string{"*"}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/feed", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify("post", "created", 3, nil)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != "post_created" || ev.PostID != 3 {
		t.Errorf("unexpected event %+v", ev)
	}
}
