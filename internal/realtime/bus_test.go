package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPublishSubscribeRoundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	bus := NewTestBus(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topic := SessionTopic(42)
	if topic != "chat_42" {
		t.Fatalf("topic got %q, want chat_42", topic)
	}

	received, closeSub := bus.Subscribe(ctx, topic)
	defer closeSub()

	//the go-redis subscription registers asynchronously
	time.Sleep(50 * time.Millisecond)

	payload := map[string]any{"id": 7, "role": "ai", "content": "answer text"}
	if err := bus.Publish(ctx, topic, payload); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case raw := <-received:
		var got map[string]any
		if err := json.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("payload is not json: %v", err)
		}
		if got["content"] != "answer text" {
			t.Errorf("content got %v", got["content"])
		}
	case <-ctx.Done():
		t.Fatal("no message received before timeout")
	}
}

func TestPublishWithoutSubscribersIsFine(t *testing.T) {
	mr := miniredis.RunT(t)
	bus := NewTestBus(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	//at-most-once: nobody listening means the message is simply dropped
	if err := bus.Publish(context.Background(), SessionTopic(1), "hello"); err != nil {
		t.Fatalf("publish should not fail without subscribers: %v", err)
	}
}
