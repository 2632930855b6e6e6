package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

type appendEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Page is a websocket client that appends transcript lines to a remote
// page-update endpoint.
type Page struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the page-update endpoint (ws:// or wss:// URL).
func Dial(ctx context.Context, url string) (*Page, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("page connect: %w", err)
	}
	return &Page{conn: conn}, nil
}

func (p *Page) Update(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := p.conn.WriteJSON(appendEvent{Type: "append", Text: text}); err != nil {
		return fmt.Errorf("page update: %w", err)
	}
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	return p.conn.Close()
}
