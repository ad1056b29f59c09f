package connection

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// Update is one membership push from the server.
type Update struct {
	Type  string `json:"type"`
	Peers []Peer `json:"peers"`
}

// Watch subscribes to a group and streams membership updates until the
// context is canceled or the connection drops. The first update is the
// catch-up with the current membership.
func (c *Client) Watch(ctx context.Context, groupKey string) (<-chan Update, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/subscribe"

	dialer := websocket.Dialer{TLSClientConfig: c.tlsCfg}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	sub := map[string]string{"type": "subscribe", "hash": groupKey}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	updates := make(chan Update)

	// The reader owns the connection; cancellation closes it, which
	// unblocks ReadJSON.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(updates)
		for {
			var update Update
			if err := conn.ReadJSON(&update); err != nil {
				return
			}
			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
