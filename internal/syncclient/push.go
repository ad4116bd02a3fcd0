package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"ai-note-taker/internal/domain"
)

type PushState int32

const (
	PushConnecting PushState = iota
	PushOpen
	PushClosed
)

func (s PushState) String() string {
	switch s {
	case PushConnecting:
		return "connecting"
	case PushOpen:
		return "open"
	case PushClosed:
		return "closed"
	default:
		return fmt.Sprintf("PushState(%d)", int32(s))
	}
}

type DecodeStatus string

const (
	DecodeValid     DecodeStatus = "valid"
	DecodeMalformed DecodeStatus = "malformed"
)

// Delivery is one inbound push message after decoding. Note is only
// meaningful when Status is DecodeValid.
type Delivery struct {
	Status DecodeStatus
	Note   domain.Note
	Raw    []byte
	Err    error
}

func (d Delivery) Valid() bool {
	return d.Status == DecodeValid
}

var noteValidator = validator.New()

// Decode parses a push message as a Note. Messages that are not JSON, or
// that lack an id or carry an unknown type, are tagged malformed.
func Decode(raw []byte) Delivery {
	d := Delivery{Raw: raw}

	var note domain.Note
	if err := json.Unmarshal(raw, &note); err != nil {
		d.Status = DecodeMalformed
		d.Err = fmt.Errorf("invalid push payload: %w", err)
		return d
	}
	if err := noteValidator.Struct(note); err != nil {
		d.Status = DecodeMalformed
		d.Err = fmt.Errorf("invalid push note: %w", err)
		return d
	}

	d.Status = DecodeValid
	d.Note = note
	return d
}

// PushChannel is a single-shot connection to the backend's push endpoint.
// It moves from connecting to open to closed and never reconnects.
type PushChannel struct {
	url        string
	state      atomic.Int32
	deliveries chan Delivery
	stop       chan struct{}
	stopOnce   sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

// OpenPushChannel starts connecting to url in the background. Deliveries
// are available on the returned channel's Deliveries until it closes, which
// happens on Close, on ctx cancellation or when the server drops the link.
func OpenPushChannel(ctx context.Context, url string, dialer *websocket.Dialer) *PushChannel {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	p := &PushChannel{
		url:        url,
		deliveries: make(chan Delivery, 16),
		stop:       make(chan struct{}),
	}
	p.state.Store(int32(PushConnecting))

	go p.run(ctx, dialer)
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.stop:
		}
	}()
	return p
}

func (p *PushChannel) State() PushState {
	return PushState(p.state.Load())
}

func (p *PushChannel) Deliveries() <-chan Delivery {
	return p.deliveries
}

func (p *PushChannel) run(ctx context.Context, dialer *websocket.Dialer) {
	defer close(p.deliveries)
	defer p.state.Store(int32(PushClosed))

	conn, _, err := dialer.DialContext(ctx, p.url, nil)
	if err != nil {
		log.Printf("[WebSocket] Failed to connect to %s: %v", p.url, err)
		return
	}

	p.mu.Lock()
	select {
	case <-p.stop:
		p.mu.Unlock()
		conn.Close()
		return
	default:
	}
	p.conn = conn
	p.state.Store(int32(PushOpen))
	p.mu.Unlock()

	log.Printf("[WebSocket] Connection established: %s", p.url)
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WebSocket] Connection lost: %v", err)
			} else {
				log.Printf("[WebSocket] Connection closed")
			}
			return
		}

		select {
		case p.deliveries <- Decode(message):
		case <-p.stop:
			return
		}
	}
}

// Close tears the channel down. It is safe to call more than once.
func (p *PushChannel) Close() error {
	var err error
	p.stopOnce.Do(func() {
		close(p.stop)

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.conn == nil {
			return
		}
		deadline := time.Now().Add(time.Second)
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		if cerr := p.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	})
	return err
}
