package handler

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// userEvent is pushed on every current-user change. User is null after
// logout.
type userEvent struct {
	User  *domain.Principal `json:"user"`
	Label string            `json:"label"`
}

// SessionStream pushes the current user of the calling session over a
// websocket: the latest value on connect, then every change.
type SessionStream struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewSessionStream(log zerolog.Logger) *SessionStream {
	return &SessionStream{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      log,
	}
}

func (h *SessionStream) Serve(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the client.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := store.Subscribe(ctx)
	go readPump(conn, cancel)
	writePump(ctx, conn, updates)
	return nil
}

// readPump discards client frames and cancels the subscription once the peer
// goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, updates <-chan *domain.Principal) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case u, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(userEvent{User: u, Label: u.DisplayLabel()}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
