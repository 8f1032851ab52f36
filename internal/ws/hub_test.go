package ws

import (
	"context"
	"encoding/json"
	"runtime"
	"testing"
	"time"
)

func TestPublishEncodesEvent(t *testing.T) {
	h := NewHub()
	h.Publish(Event{
		Type:    EventStockUpdate,
		Action:  "sale_committed",
		Data:    map[string]int{"stock": 4},
		User:    &Actor{ID: "u1", Name: "Kasir"},
		Message: "Kasir sold 1 item",
	})

	select {
	case msg := <-h.Broadcast:
		var got map[string]interface{}
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("expected valid json, got %v", err)
		}
		if got["type"] != EventStockUpdate || got["action"] != "sale_committed" {
			t.Fatalf("unexpected payload %s", msg)
		}
		user, ok := got["user"].(map[string]interface{})
		if !ok || user["name"] != "Kasir" {
			t.Fatalf("expected user in payload, got %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected broadcast within 1s")
	}
}

func TestSendsDoNotBlockAfterRunStops(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	baseline := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		h.Publish(Event{Type: EventStockUpdate})
	}

	returned := make(chan struct{})
	go func() {
		h.Join(nil)
		h.Leave(nil)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("expected Join and Leave to return after the hub stopped")
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("expected publish goroutines to exit, %d still running above baseline", runtime.NumGoroutine()-baseline)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
