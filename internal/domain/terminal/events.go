package terminal

// TerminalData carries one decoded chunk of a tab's output.
type TerminalData struct {
	TabID TabID  `json:"tab_id"`
	Data  string `json:"data"`
}

// TabClosed is emitted once per session when its reader exits.
type TabClosed struct {
	TabID TabID `json:"tab_id"`
}

// Sink receives output events. Implementations must not block for long:
// a slow sink stalls the reader of the tab that produced the event.
type Sink interface {
	TerminalData(ev TerminalData)
	TabClosed(ev TabClosed)
}

// SinkFuncs adapts a pair of functions to Sink. Nil fields drop the event.
type SinkFuncs struct {
	OnData   func(TerminalData)
	OnClosed func(TabClosed)
}

func (s SinkFuncs) TerminalData(ev TerminalData) {
	if s.OnData != nil {
		s.OnData(ev)
	}
}

func (s SinkFuncs) TabClosed(ev TabClosed) {
	if s.OnClosed != nil {
		s.OnClosed(ev)
	}
}

type multiSink []Sink

// Fanout returns a Sink delivering each event to every sink in order.
func Fanout(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) TerminalData(ev TerminalData) {
	for _, s := range m {
		s.TerminalData(ev)
	}
}

func (m multiSink) TabClosed(ev TabClosed) {
	for _, s := range m {
		s.TabClosed(ev)
	}
}
