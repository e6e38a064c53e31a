package terminal

import (
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"unicode/utf8"

	"go.uber.org/zap"
)

// read drains one session's output until EOF or error, then unregisters the
// session and reports it closed. It never holds the table lock while
// blocked in Read.
func (s *Spawner) read(h *Handle, r io.Reader, sink Sink) {
	defer s.readers.Done()

	buf := make([]byte, s.chunk)
	var dec utf8Decoder

	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.rec.OutputBytes(n)
			if text := dec.decode(buf[:n]); text != "" {
				h.emit(func() {
					sink.TerminalData(TerminalData{TabID: h.id, Data: text})
				})
			}
		}
		if err != nil {
			if !endOfSession(err) {
				s.log.Warn("PTY read error", zap.String("tab_id", string(h.id)), zap.Error(err))
			}
			break
		}
		if n == 0 {
			break
		}
	}

	if text := dec.flush(); text != "" {
		h.emit(func() {
			sink.TerminalData(TerminalData{TabID: h.id, Data: text})
		})
	}

	if _, err := s.table.Remove(h.id); err != nil {
		s.log.Error("Failed to unregister tab", zap.String("tab_id", string(h.id)), zap.Error(err))
	}
	h.release()
	s.rec.TabClosed()

	s.log.Info("Tab closed", zap.String("tab_id", string(h.id)))
	sink.TabClosed(TabClosed{TabID: h.id})
}

// endOfSession reports errors that mean the session ended normally: EOF,
// EIO once the child side hangs up (Linux), or our own close of the master.
func endOfSession(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, os.ErrClosed)
}

// utf8Decoder turns raw pty chunks into valid UTF-8. A multi-byte sequence
// split across two reads is held back and joined with the next chunk;
// anything actually invalid becomes U+FFFD.
type utf8Decoder struct {
	pending []byte
}

func (d *utf8Decoder) decode(p []byte) string {
	data := p
	if len(d.pending) > 0 {
		data = append(d.pending, p...)
		d.pending = nil
	}

	if cut := incompleteTail(data); cut > 0 {
		d.pending = append([]byte(nil), data[len(data)-cut:]...)
		data = data[:len(data)-cut]
	}

	return lossy(data)
}

func (d *utf8Decoder) flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	text := lossy(d.pending)
	d.pending = nil
	return text
}

// incompleteTail returns how many trailing bytes of p start a rune that is
// not finished yet.
func incompleteTail(p []byte) int {
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return 0
		}
		return len(p) - i
	}
	return 0
}

// lossy converts p to a string, writing one U+FFFD for each maximal invalid
// subsequence. A run of bad bytes yields one replacement per byte that could
// not start or extend a sequence.
func lossy(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}

	var b strings.Builder
	b.Grow(len(p) + 2)
	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune(utf8.RuneError)
			p = p[invalidPrefix(p):]
			continue
		}
		b.WriteRune(r)
		p = p[size:]
	}
	return b.String()
}

// invalidPrefix returns the length of the broken sequence at the start of p:
// its lead byte plus any continuation bytes that were still acceptable.
func invalidPrefix(p []byte) int {
	var need int
	lo, hi := byte(0x80), byte(0xBF)
	switch c := p[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c == 0xF4:
		need, hi = 3, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for ; n <= need && n < len(p); n++ {
		if p[n] < lo || p[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return n
}
