package renderer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPageUpdateSendsAppendEvent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan appendEvent, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev appendEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Errorf("unmarshal: %v", err)
			return
		}
		received <- ev
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	page, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	if err := page.Update(context.Background(), "hello page"); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-received:
		if ev.Type != "append" {
			t.Errorf("event type = %q, want append", ev.Type)
		}
		if ev.Text != "hello page" {
			t.Errorf("event text = %q, want %q", ev.Text, "hello page")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the append event")
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial(context.Background(), "ws://127.0.0.1:1/nope"); err == nil {
		t.Error("expected dial error")
	}
}
