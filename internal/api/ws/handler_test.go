package ws

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tabterm/internal/domain/state"
	"github.com/GriffinCanCode/tabterm/internal/domain/tabs"
	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
	"github.com/GriffinCanCode/tabterm/internal/domain/workspace"
)

// mockTerminals also keeps the set of live sessions so List agrees with
// Create and Close.
type mockTerminals struct {
	mock.Mock

	mu     sync.Mutex
	live   []terminal.TabID
	exited map[terminal.TabID]bool
}

func (m *mockTerminals) Create() (terminal.TabID, error) {
	args := m.Called()
	id := args.Get(0).(terminal.TabID)
	if err := args.Error(1); err != nil {
		return id, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exited[id] {
		m.live = append(m.live, id)
	}
	return id, nil
}

func (m *mockTerminals) Close(id terminal.TabID) error {
	if err := m.Called(id).Error(0); err != nil {
		return err
	}
	m.exit(id)
	return nil
}

func (m *mockTerminals) List() ([]terminal.TabID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.live), nil
}

// exit ends a session as if its shell quit.
func (m *mockTerminals) exit(id terminal.TabID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exited == nil {
		m.exited = make(map[terminal.TabID]bool)
	}
	m.exited[id] = true
	m.live = slices.DeleteFunc(m.live, func(v terminal.TabID) bool { return v == id })
}

func (m *mockTerminals) Write(id terminal.TabID, data []byte) error {
	return m.Called(id, string(data)).Error(0)
}

func (m *mockTerminals) Resize(id terminal.TabID, rows, cols uint16) error {
	return m.Called(id, rows, cols).Error(0)
}

type streamFixture struct {
	hub   *Hub
	terms *mockTerminals
	url   string
}

func newStreamFixture(t *testing.T) *streamFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := state.Open(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, err)
	terms := &mockTerminals{}
	hub := NewHub(16, nil, nil)

	router := gin.New()
	router.GET("/stream", NewHandler(hub, workspace.New(terms, tabs.NewTracker(), store, nil), nil).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})

	return &streamFixture{
		hub:   hub,
		terms: terms,
		url:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream",
	}
}

func (f *streamFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// A pong proves the client is registered with the hub.
	send(t, conn, Inbound{Type: TypePing})
	assert.Equal(t, TypePong, receive(t, conn).Type)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg Inbound) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Outbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStreamCreateReplies(t *testing.T) {
	f := newStreamFixture(t)
	f.terms.On("Create").Return(terminal.TabID("tab-1"), nil)
	conn := f.dial(t)

	send(t, conn, Inbound{Type: TypeCreate})
	assert.Equal(t, Outbound{Type: TypeCreated, TabID: "tab-1"}, receive(t, conn))
}

func TestStreamForwardsCommands(t *testing.T) {
	f := newStreamFixture(t)
	f.terms.On("Write", terminal.TabID("tab-1"), "pwd\r").Return(nil)
	f.terms.On("Resize", terminal.TabID("tab-1"), uint16(50), uint16(160)).Return(nil)
	conn := f.dial(t)

	send(t, conn, Inbound{Type: TypeInput, TabID: "tab-1", Data: "pwd\r"})
	send(t, conn, Inbound{Type: TypeResize, TabID: "tab-1", Rows: 50, Cols: 160})
	// Commands are handled in order, so the pong comes after both.
	send(t, conn, Inbound{Type: TypePing})
	assert.Equal(t, TypePong, receive(t, conn).Type)

	f.terms.AssertExpectations(t)
}

func TestStreamReportsErrors(t *testing.T) {
	f := newStreamFixture(t)
	f.terms.On("Write", terminal.TabID("tab-9"), "x").Return(terminal.TabNotFound("tab-9"))
	conn := f.dial(t)

	send(t, conn, Inbound{Type: TypeInput, TabID: "tab-9", Data: "x"})
	msg := receive(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, terminal.TabID("tab-9"), msg.TabID)
	assert.Contains(t, msg.Message, "tab not found")

	send(t, conn, Inbound{Type: "launch"})
	msg = receive(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, "launch")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	assert.Equal(t, "malformed message", receive(t, conn).Message)
}

func TestStreamBroadcastsTerminalEvents(t *testing.T) {
	f := newStreamFixture(t)
	a := f.dial(t)
	b := f.dial(t)
	require.Equal(t, 2, f.hub.Len())

	f.hub.TerminalData(terminal.TerminalData{TabID: "tab-1", Data: "héllo"})
	f.hub.TabClosed(terminal.TabClosed{TabID: "tab-1"})

	for _, conn := range []*websocket.Conn{a, b} {
		assert.Equal(t, Outbound{Type: TypeTerminalData, TabID: "tab-1", Data: "héllo"}, receive(t, conn))
		assert.Equal(t, Outbound{Type: TypeTabClosed, TabID: "tab-1"}, receive(t, conn))
	}
}

func TestStreamUnregistersOnDisconnect(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t)
	require.Equal(t, 1, f.hub.Len())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamRejectsForeignOrigin(t *testing.T) {
	f := newStreamFixture(t)

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(f.url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
