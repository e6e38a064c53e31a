package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
)

type countingRecorder struct {
	mu        sync.Mutex
	out       map[string]int
	connected int
	dropped   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{out: make(map[string]int)}
}

func (r *countingRecorder) RecordWSMessage(direction, msgType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if direction == "out" {
		r.out[msgType]++
	}
}

func (r *countingRecorder) IncWSConnections() { r.mu.Lock(); r.connected++; r.mu.Unlock() }
func (r *countingRecorder) DecWSConnections() { r.mu.Lock(); r.connected--; r.mu.Unlock() }
func (r *countingRecorder) IncWSDropped()     { r.mu.Lock(); r.dropped++; r.mu.Unlock() }

func readOutbound(t *testing.T, c *client) Outbound {
	t.Helper()
	raw, ok := <-c.send
	require.True(t, ok, "queue closed")
	var msg Outbound
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHubBroadcastsToEveryClient(t *testing.T) {
	rec := newCountingRecorder()
	hub := NewHub(8, rec, nil)
	a, b := hub.register(), hub.register()

	hub.TerminalData(terminal.TerminalData{TabID: "tab-1", Data: "hello"})
	hub.TabClosed(terminal.TabClosed{TabID: "tab-1"})

	for _, c := range []*client{a, b} {
		assert.Equal(t, Outbound{Type: TypeTerminalData, TabID: "tab-1", Data: "hello"}, readOutbound(t, c))
		assert.Equal(t, Outbound{Type: TypeTabClosed, TabID: "tab-1"}, readOutbound(t, c))
	}
	assert.Equal(t, 2, rec.out[TypeTerminalData])
	assert.Equal(t, 2, rec.connected)
}

func TestHubPreservesOrderPerTab(t *testing.T) {
	hub := NewHub(64, nil, nil)
	c := hub.register()

	for _, s := range []string{"a", "b", "c", "d"} {
		hub.TerminalData(terminal.TerminalData{TabID: "tab-1", Data: s})
	}

	var got string
	for _i := 0; _i < 4; _i++ {
		got += readOutbound(t, c).Data
	}
	assert.Equal(t, "abcd", got)
}

func TestHubDropsSlowClient(t *testing.T) {
	rec := newCountingRecorder()
	hub := NewHub(2, rec, nil)
	slow := hub.register()
	fast := hub.register()

	for i := 0; i < 3; i++ {
		hub.TerminalData(terminal.TerminalData{TabID: "tab-1", Data: string(rune('a' + i))})
		// fast keeps draining its queue.
		readOutbound(t, fast)
	}

	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, 1, rec.dropped)
	assert.Equal(t, 1, rec.connected)

	// The slow client keeps what was queued, then sees its queue closed.
	assert.Equal(t, "a", readOutbound(t, slow).Data)
	assert.Equal(t, "b", readOutbound(t, slow).Data)
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	rec := newCountingRecorder()
	hub := NewHub(1, rec, nil)
	c := hub.register()

	assert.True(t, hub.unregister(c))
	assert.False(t, hub.unregister(c))
	assert.False(t, c.offer([]byte("x")))
	assert.Equal(t, 0, rec.connected)
	assert.Zero(t, rec.dropped)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(1, nil, nil)
	c := hub.register()

	hub.Close()

	assert.Zero(t, hub.Len())
	_, ok := <-c.send
	assert.False(t, ok)

	// Broadcasting with no clients is a no-op.
	hub.TerminalData(terminal.TerminalData{TabID: "tab-1", Data: "x"})
}

func TestHubConcurrentBroadcastAndChurn(t *testing.T) {
	hub := NewHub(4, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for _i := 0; _i < 200; _i++ {
				hub.TerminalData(terminal.TerminalData{TabID: terminal.TabID("tab-" + string(rune('1'+n))), Data: "x"})
			}
		}(i)
	}
	for _i := 0; _i < 4; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _i := 0; _i < 50; _i++ {
				c := hub.register()
				hub.unregister(c)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.Len())
}
