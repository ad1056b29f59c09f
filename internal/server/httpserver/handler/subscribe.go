package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/peermeet/peermeet-go/internal/fanout"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sendQueueSize bounds how many undelivered updates an observer may
// hold before new ones are dropped.
const sendQueueSize = 16

var errObserverClosed = errors.New("observer connection closed")

// subscribeMessage is the client's subscription request. The group key
// travels in the "hash" field.
type subscribeMessage struct {
	Type     string `json:"type"`
	GroupKey string `json:"hash"`
}

// wsObserver adapts a WebSocket connection to fanout.Observer. Updates
// are enqueued to a buffered channel drained by a single writer
// goroutine, so a slow client never blocks the mutation path.
type wsObserver struct {
	id   string
	conn *websocket.Conn
	send chan fanout.Update

	closeOnce sync.Once
	closed    chan struct{}
}

func newWSObserver(conn *websocket.Conn) *wsObserver {
	return &wsObserver{
		id:     "obs-" + ulid.Make().String(),
		conn:   conn,
		send:   make(chan fanout.Update, sendQueueSize),
		closed: make(chan struct{}),
	}
}

func (o *wsObserver) ID() string {
	return o.id
}

// Send enqueues an update without blocking. A full queue drops the
// update (at-most-once delivery); a closed connection is an error so
// the hub detaches the observer.
func (o *wsObserver) Send(update fanout.Update) error {
	select {
	case <-o.closed:
		return errObserverClosed
	default:
	}

	select {
	case o.send <- update:
	default:
		// Queue full: the observer will catch up on the next push.
	}
	return nil
}

func (o *wsObserver) close() {
	o.closeOnce.Do(func() {
		close(o.closed)
		o.conn.Close()
	})
}

// writeLoop drains the send queue onto the wire. A write failure
// closes the observer; the hub drops it on the next Send.
func (o *wsObserver) writeLoop() {
	for {
		select {
		case update := <-o.send:
			if err := o.conn.WriteJSON(update); err != nil {
				o.close()
				return
			}
		case <-o.closed:
			return
		}
	}
}

// handleSubscribe handles GET /v1/subscribe. After the WebSocket
// upgrade the client sends subscribe messages; each one moves the
// observer to that group and answers with an immediate catch-up view.
func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	obs := newWSObserver(conn)
	go obs.writeLoop()

	defer func() {
		h.hub.Unsubscribe(obs.ID())
		obs.close()
	}()

	for {
		var msg subscribeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "subscribe" || msg.GroupKey == "" {
			continue
		}

		// Attach before reading the view so no concurrent publish
		// lands between the catch-up and the subscription.
		h.hub.Subscribe(obs, msg.GroupKey)

		views := h.registry.Discover(r.Context(), msg.GroupKey)
		if err := obs.Send(fanout.NewUpdate(views)); err != nil {
			return
		}

		h.log.Debug("observer subscribed",
			"observer_id", obs.ID(),
			"group", logger.KeyFingerprint(msg.GroupKey),
		)
	}
}
