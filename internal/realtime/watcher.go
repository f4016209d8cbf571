// Package realtime subscribes to the backend's task-update websocket and
// nudges the store to refetch whenever another client changes something.
// It is best-effort: every failure is logged and retried, never surfaced.
package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxMsgSize   = 4096

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// event is the wire shape of a push message.
type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Watcher maintains the websocket connection to /ws/task-updates.
type Watcher struct {
	url      string
	token    func() string
	onUpdate func()
	dialer   *websocket.Dialer
}

// NewWatcher builds a watcher for the given API base URL. token supplies the
// bearer token at (re)connect time, so a refreshed session is picked up on
// the next dial. onUpdate fires for every task_update event.
func NewWatcher(baseURL string, token func() string, onUpdate func()) *Watcher {
	return &Watcher{
		url:      wsURL(baseURL) + "/ws/task-updates",
		token:    token,
		onUpdate: onUpdate,
		dialer:   websocket.DefaultDialer,
	}
}

func wsURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}

// Run connects and listens until ctx is cancelled, reconnecting with capped
// exponential backoff after every failure.
func (w *Watcher) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		if err := w.listen(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Debug("task-update stream interrupted")
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listen runs one connection to completion. A clean read loop resets the
// caller's backoff by returning only on error or cancellation.
func (w *Watcher) listen(ctx context.Context) error {
	token := w.token()
	if token == "" {
		return errNoSession
	}

	// The browser cannot set headers on a websocket, so the server takes the
	// token as a query parameter; do the same here.
	conn, resp, err := w.dialer.DialContext(ctx, w.url+"?token="+token, nil)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.WithError(err).Debug("unparseable task-update message")
			continue
		}
		if ev.Type == "task_update" && w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

var errNoSession = &noSessionError{}

type noSessionError struct{}

func (*noSessionError) Error() string { return "no session token for task-update stream" }
