package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/api/middleware"
	"github.com/GriffinCanCode/tabterm/internal/domain/workspace"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || middleware.LocalOrigin(origin)
	},
}

// Handler manages WebSocket connections
type Handler struct {
	hub *Hub
	ws  *workspace.Workspace
	log *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, ws *workspace.Workspace, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{hub: hub, ws: ws, log: log}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects or is dropped.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := h.hub.register()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, cl)
	}()

	h.readPump(conn, cl)
	h.hub.unregister(cl)
	<-done
	h.log.Info("Stream client disconnected", zap.String("client_id", cl.id.String()))
}

func (h *Handler) readPump(conn *websocket.Conn, cl *client) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Inbound
		if err := sonic.ConfigStd.Unmarshal(data, &msg); err != nil {
			h.hub.reply(cl, Outbound{Type: TypeError, Message: "malformed message"})
			continue
		}
		h.hub.rec.RecordWSMessage("in", inboundLabel(msg.Type))
		h.handle(cl, msg)
	}
}

// writePump owns every write to conn.
func (h *Handler) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handle(cl *client, msg Inbound) {
	var err error
	switch msg.Type {
	case TypeCreate:
		tab, createErr := h.ws.OpenTab()
		if createErr == nil {
			h.hub.reply(cl, Outbound{Type: TypeCreated, TabID: tab.ID})
		}
		err = createErr
	case TypeClose:
		err = h.ws.CloseTab(msg.TabID)
	case TypeInput:
		err = h.ws.Input(msg.TabID, []byte(msg.Data))
	case TypeResize:
		err = h.ws.Resize(msg.TabID, msg.Rows, msg.Cols)
	case TypeFocus:
		err = h.ws.Focus(msg.TabID)
	case TypePing:
		h.hub.reply(cl, Outbound{Type: TypePong})
	default:
		h.hub.reply(cl, Outbound{Type: TypeError, Message: "unknown message type: " + msg.Type})
		return
	}

	if err != nil {
		h.log.Debug("Stream command failed",
			zap.String("type", msg.Type),
			zap.String("tab_id", string(msg.TabID)),
			zap.Error(err),
		)
		h.hub.reply(cl, Outbound{Type: TypeError, TabID: msg.TabID, Message: err.Error()})
	}
}

// inboundLabel bounds the metric label set to known commands.
func inboundLabel(t string) string {
	switch t {
	case TypeCreate, TypeClose, TypeInput, TypeResize, TypeFocus, TypePing:
		return t
	default:
		return "unknown"
	}
}
