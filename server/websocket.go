package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/spektr-org/plotdash/engine"
	"github.com/spektr-org/plotdash/figure"
)

// ============================================================================
// WEBSOCKET — One engine session per connection
// ============================================================================
// The client sends {"control", "value"}; an empty value clears the control.
// Every recomputed slot is pushed as {"slot", "spec", "image"} or, when the
// encodings do not fit the data, {"slot", "spec", "error"}.
//
// {"table": N} asks for page N of the data table, answered with {"table"}.
// Paging never touches the controls of the session.
// ============================================================================

const writeWait = 10 * time.Second

type clientMessage struct {
	Control string `json:"control"`
	Value   string `json:"value"`
	Table   *int   `json:"table,omitempty"`
}

type serverMessage struct {
	Slot    string            `json:"slot,omitempty"`
	Control string            `json:"control,omitempty"`
	Spec    *engine.ChartSpec `json:"spec,omitempty"`
	Image   string            `json:"image,omitempty"`
	Error   string            `json:"error,omitempty"`
	Table   *engine.TableData `json:"table,omitempty"`
}

// wsConn serialises writes to one connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.opts.Logger.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger := s.opts.Logger.With(slog.String("session", id))
	logger.Debug("session opened")
	defer logger.Debug("session closed")

	c := &wsConn{conn: conn}
	session := s.binder.NewSession(func(slotID string, spec engine.ChartSpec) {
		if err := c.send(s.update(slotID, spec)); err != nil {
			logger.Debug("push failed", slog.Any("err", err))
		}
	})
	defer session.Close()

	for _, slot := range s.binder.Slots() {
		spec, err := session.Render(slot.ID)
		if err != nil {
			logger.Error("initial render failed", slog.String("slot", slot.ID), slog.Any("err", err))
			return
		}
		if err := c.send(s.update(slot.ID, spec)); err != nil {
			return
		}
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket read failed", slog.Any("err", err))
				}
				return
			}
			s.apply(session, c, msg, logger)
		}
	}()

	select {
	case <-readDone:
	case <-s.closing:
		c.close()
		_ = conn.SetReadDeadline(time.Now().Add(writeWait))
		<-readDone
	}
}

// apply changes one control. The session listener pushes the recomputed
// slot; failures are reported back to the client.
func (s *Server) apply(session *engine.Session, c *wsConn, msg clientMessage, logger *slog.Logger) {
	if msg.Table != nil {
		if err := c.send(serverMessage{Table: s.binder.Table(*msg.Table)}); err != nil {
			logger.Debug("push failed", slog.Any("err", err))
		}
		return
	}

	var err error
	if msg.Value == "" {
		err = session.Clear(msg.Control)
	} else {
		err = session.Set(msg.Control, msg.Value)
	}
	if err == nil {
		return
	}

	logger.Debug("control rejected", slog.String("control", msg.Control), slog.Any("err", err))
	_ = c.send(serverMessage{Control: msg.Control, Error: err.Error()})
}

// update builds the push message of a recomputed slot.
func (s *Server) update(slotID string, spec engine.ChartSpec) serverMessage {
	msg := serverMessage{Slot: slotID, Spec: &spec}
	if _, err := figure.Build(s.binder.Dataset(), spec, s.opts.FigureOptions...); err != nil {
		msg.Error = err.Error()
		return msg
	}
	msg.Image = s.chartURL(spec)
	return msg
}
