package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vaibhavx77/rover-app/internal/engine"
	"github.com/vaibhavx77/rover-app/internal/hub"
	"github.com/vaibhavx77/rover-app/internal/observability"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds a single inbound event frame.
	maxMessageSize = 4096
)

// inboundEnvelope is the client-to-server frame: a named event plus its raw
// payload, decoded per event kind by the engine.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Server upgrades HTTP connections to websocket sessions and bridges them to
// the fanout engine. Inbound events are handled on the read loop so each
// session's events keep arrival order.
type Server struct {
	hub      *hub.Hub
	engine   *engine.Engine
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, eng *engine.Engine, metrics *observability.Metrics) *Server {
	return &Server{
		hub:     h,
		engine:  eng,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The service is origin-agnostic, same as the CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", s.handleConnection)
}

func (s *Server) handleConnection(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", c.Request.RemoteAddr)
		return
	}

	sessionID := uuid.NewString()
	session := s.hub.Register(sessionID)
	s.metrics.ActiveSessions.Inc()
	slog.Info("session connected", "session_id", sessionID, "remote", conn.RemoteAddr())

	go s.writeLoop(conn, session)
	s.readLoop(c, conn, sessionID)
}

// readLoop decodes inbound envelopes and dispatches them until the
// connection drops, then propagates the disconnect.
func (s *Server) readLoop(c *gin.Context, conn *websocket.Conn, sessionID string) {
	defer func() {
		s.engine.Disconnect(sessionID)
		s.metrics.ActiveSessions.Dec()
		conn.Close()
		slog.Info("session disconnected", "session_id", sessionID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "session_id", sessionID, "error", err)
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			slog.Warn("malformed event frame", "session_id", sessionID, "error", err)
			continue
		}

		s.engine.Dispatch(c.Request.Context(), sessionID, env.Event, env.Data)
	}
}

// writeLoop drains the session's hub channel onto the wire and keeps the
// connection alive with pings. It exits when the hub closes the channel or a
// write fails.
func (s *Server) writeLoop(conn *websocket.Conn, session *hub.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case env, ok := <-session.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				slog.Warn("websocket write error", "session_id", session.ID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
