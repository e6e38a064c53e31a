package terminal

import (
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoderJoinsSplitRunes(t *testing.T) {
	var d utf8Decoder
	euro := []byte("€") // e2 82 ac

	assert.Equal(t, "price: ", d.decode(append([]byte("price: "), euro[:1]...)))
	assert.Equal(t, "", d.decode(euro[1:2]))
	assert.Equal(t, "€5", d.decode(append(euro[2:], '5')))
	assert.Equal(t, "", d.flush())
}

func TestDecoderReplacesInvalidBytes(t *testing.T) {
	var d utf8Decoder
	assert.Equal(t, "a�b", d.decode([]byte{'a', 0xff, 'b'}))
}

func TestDecoderReplacesEachInvalidSequence(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"two stray bytes", []byte{0xff, 0xff, 'x'}, "\uFFFD\uFFFDx"},
		{"surrogate", []byte("\xed\xa0\x80"), "\uFFFD\uFFFD\uFFFD"},
		{"truncated three-byte", []byte("\xe2\x82y"), "\uFFFDy"},
		{"overlong", []byte{0xc0, 0xaf}, "\uFFFD\uFFFD"},
		{"above max", []byte{0xf4, 0x90, 0x80, 0x80}, "\uFFFD\uFFFD\uFFFD\uFFFD"},
		{"truncated four-byte mid text", []byte{'a', 0xf0, 0x9f, 0x98, 'b'}, "a\uFFFDb"},
		{"valid around invalid", []byte("é\xffü"), "é\uFFFDü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d utf8Decoder
			got := d.decode(tt.in) + d.flush()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoderFlushesDanglingPrefix(t *testing.T) {
	var d utf8Decoder
	assert.Equal(t, "ok", d.decode([]byte{'o', 'k', 0xf0, 0x9f}))
	assert.Equal(t, "�", d.flush())
	assert.Equal(t, "", d.flush())
}

func TestDecoderBrokenPrefixFollowedByASCII(t *testing.T) {
	var d utf8Decoder
	assert.Equal(t, "x", d.decode([]byte{'x', 0xe2}))
	assert.Equal(t, "�y", d.decode([]byte{'y'}))
}

func TestIncompleteTail(t *testing.T) {
	assert.Equal(t, 0, incompleteTail(nil))
	assert.Equal(t, 0, incompleteTail([]byte("plain")))
	assert.Equal(t, 0, incompleteTail([]byte("ünïcode")))
	assert.Equal(t, 1, incompleteTail([]byte{'a', 0xe2}))
	assert.Equal(t, 2, incompleteTail([]byte{'a', 0xe2, 0x82}))
	assert.Equal(t, 3, incompleteTail([]byte{0xf0, 0x9f, 0x98}))
}

func TestEndOfSession(t *testing.T) {
	assert.True(t, endOfSession(io.EOF))
	assert.True(t, endOfSession(&os.PathError{Op: "read", Path: "/dev/ptmx", Err: syscall.EIO}))
	assert.True(t, endOfSession(os.ErrClosed))
	assert.False(t, endOfSession(io.ErrUnexpectedEOF))
}
