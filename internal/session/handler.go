// internal/session/handler.go
package session

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ServeWS upgrades the request and runs the connection's read loop. Each
// connection gets a fresh server-assigned identity; reconnect-with-identity
// is out of scope for now.
func (co *Coordinator) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The game client is served from a separate origin in development.
		InsecureSkipVerify: true,
	})
	if err != nil {
		co.log.WithError(err).Warn("websocket accept failed")
		return
	}

	c := &Client{ID: uuid.New(), Conn: conn}
	co.log.WithField("client", c.ID).Info("client connected")

	defer func() {
		co.Disconnect(c)
		conn.Close(websocket.StatusNormalClosure, "")
		co.log.WithField("client", c.ID).Info("client disconnected")
	}()

	ctx := r.Context()
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				co.log.WithFields(logrus.Fields{"client": c.ID}).
					WithError(err).Debug("read loop ended")
			}
			return
		}
		co.Dispatch(ctx, c, env)
	}
}
