package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-note-taker/internal/domain"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T, maxConnections int) (*Manager, string, context.CancelFunc) {
	t.Helper()
	manager := NewManager(maxConnections, time.Second, 5*time.Second, 4*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)

	var seq atomic.Int64
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(fmt.Sprintf("client-%d", seq.Add(1)), conn, manager)
		if !manager.Register(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return manager, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, m *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Connections() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, got %d", want, m.Connections())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManager_BroadcastReachesEveryClient(t *testing.T) {
	manager, url, _ := startHub(t, 10)
	a := dial(t, url)
	b := dial(t, url)
	waitForConnections(t, manager, 2)

	note := &domain.Note{ID: "1", Title: "Lecture Slide 1", Type: domain.NoteTypeSlide}
	if err := manager.BroadcastNote(note); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("expected a message, got %v", err)
		}
		if msgType != websocket.TextMessage {
			t.Errorf("expected text message, got %d", msgType)
		}
		var got domain.Note
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("expected a bare note object, got %s", data)
		}
		if got.ID != "1" || got.Type != domain.NoteTypeSlide {
			t.Errorf("unexpected note %+v", got)
		}
	}
}

func TestManager_OneNotePerMessage(t *testing.T) {
	manager, url, _ := startHub(t, 10)
	conn := dial(t, url)
	waitForConnections(t, manager, 1)

	for i := 0; i < 3; i++ {
		manager.BroadcastNote(&domain.Note{ID: fmt.Sprint(i), Type: domain.NoteTypeVideo})
	}

	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("expected message %d, got %v", i, err)
		}
		var got domain.Note
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("message %d is not a single note: %s", i, data)
		}
		if got.ID != fmt.Sprint(i) {
			t.Errorf("expected note %d, got %s", i, got.ID)
		}
	}
}

func TestManager_RejectsBeyondMaxConnections(t *testing.T) {
	manager, url, _ := startHub(t, 1)
	dial(t, url)
	waitForConnections(t, manager, 1)

	extra := dial(t, url)
	extra.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := extra.ReadMessage(); err == nil {
		t.Error("expected the extra connection to be closed")
	}
	if manager.Connections() != 1 {
		t.Errorf("expected 1 connection, got %d", manager.Connections())
	}
}

func TestManager_UnregistersOnDisconnect(t *testing.T) {
	manager, url, _ := startHub(t, 10)
	conn := dial(t, url)
	waitForConnections(t, manager, 1)

	conn.Close()
	waitForConnections(t, manager, 0)
}

func TestManager_StopClosesClients(t *testing.T) {
	manager, url, cancel := startHub(t, 10)
	conn := dial(t, url)
	waitForConnections(t, manager, 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed after hub stop")
	}
	if err := manager.BroadcastNote(&domain.Note{ID: "late", Type: domain.NoteTypeSlide}); err != nil {
		t.Errorf("expected broadcast after stop to be a no-op, got %v", err)
	}
}

func TestEncodeNote_Nil(t *testing.T) {
	if _, err := EncodeNote(nil); err == nil {
		t.Error("expected error for nil note")
	}
}
