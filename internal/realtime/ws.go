package realtime

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// clientFrame is a client-initiated control frame. Clients manage advisory
// room membership with join-chat / leave-chat.
type clientFrame struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversation_id"`
}

const (
	frameJoinChat  = "join-chat"
	frameLeaveChat = "leave-chat"

	// subscriberBuffer bounds the per-client event queue; events beyond it
	// drop and the client resyncs over REST.
	subscriberBuffer = 64

	writeTimeout = 10 * time.Second
)

// Handler returns the websocket endpoint. Each connection gets one hub
// subscription; a reader goroutine consumes control frames while the handler
// goroutine pumps hub events to the peer as JSON.
func Handler(hub *Hub, lg zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // origin policy is enforced by the CORS layer
		})
		if err != nil {
			lg.Warn().Err(err).Msg("websocket accept failed")
			return
		}
		defer conn.Close(websocket.StatusInternalError, "closed")

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		sub := hub.Subscribe(subscriberBuffer)
		defer sub.Close()

		// Reader: control frames only.
		go func() {
			defer cancel()
			for {
				var f clientFrame
				if err := wsjson.Read(ctx, conn, &f); err != nil {
					return
				}
				switch f.Event {
				case frameJoinChat:
					if f.ConversationID != "" {
						sub.Join(f.ConversationID)
					}
				case frameLeaveChat:
					if f.ConversationID != "" {
						sub.Leave(f.ConversationID)
					}
				default:
					lg.Debug().Str("event", f.Event).Msg("ignoring unknown client frame")
				}
			}
		}()

		// Writer: pump hub events until the peer goes away.
		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case evt := <-sub.C:
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, evt)
				wcancel()
				if err != nil {
					return
				}
			}
		}
	}
}
