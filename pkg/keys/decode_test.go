package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_NamedKeys(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		ctrl  bool
		meta  bool
		shift bool
	}{
		{in: "\r", name: "enter"},
		{in: "\n", name: "enter"},
		{in: "\t", name: "tab"},
		{in: "\x7f", name: "backspace"},
		{in: "\b", name: "backspace", ctrl: true},
		{in: "\x1b\x7f", name: "backspace", meta: true},
		{in: "\x1b", name: "escape"},
		{in: "\x1b\x1b", name: "escape", meta: true},
		{in: " ", name: "space"},
		{in: "\x1b ", name: "space", meta: true},
		{in: "\x03", name: "c", ctrl: true},
		{in: "\x01", name: "a", ctrl: true},
		{in: "q", name: "q"},
		{in: "Q", name: "q", shift: true},
		{in: "\x1bb", name: "b", meta: true},
		{in: "\x1bF", name: "f", meta: true, shift: true},
		{in: "\x1b[A", name: "up"},
		{in: "\x1b[B", name: "down"},
		{in: "\x1b[C", name: "right"},
		{in: "\x1b[D", name: "left"},
		{in: "\x1bOA", name: "up"},
		{in: "\x1b[H", name: "home"},
		{in: "\x1b[F", name: "end"},
		{in: "\x1b[1~", name: "home"},
		{in: "\x1b[4~", name: "end"},
		{in: "\x1b[2~", name: "insert"},
		{in: "\x1b[3~", name: "delete"},
		{in: "\x1b[5~", name: "pageup"},
		{in: "\x1b[[6~", name: "pagedown"},
		{in: "\x1bOP", name: "f1"},
		{in: "\x1b[[E", name: "f5"},
		{in: "\x1b[24~", name: "f12"},
		{in: "\x1b[Z", name: "tab", shift: true},
		{in: "\x1b[a", name: "up", shift: true},
		{in: "\x1bOd", name: "left", ctrl: true},
		{in: "\x1b[3^", name: "delete", ctrl: true},
		{in: "\x1b[7$", name: "home", shift: true},
		{in: "\x1b\x1b[D", name: "left"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.in, func(t *testing.T) {
			res := Decode(tt.in)
			require.NotNil(t, res.Key)
			assert.Equal(t, tt.name, res.Key.Name)
			assert.Equal(t, tt.ctrl, res.Key.Ctrl, "ctrl")
			assert.Equal(t, tt.meta, res.Key.Meta, "meta")
			assert.Equal(t, tt.shift, res.Key.Shift, "shift")
			assert.Equal(t, tt.in, res.Key.Sequence)
		})
	}
}

func TestDecode_ModifierParameter(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		ctrl  bool
		meta  bool
		shift bool
	}{
		{in: "\x1b[1;2A", name: "up", shift: true},
		{in: "\x1b[1;3D", name: "left", meta: true},
		{in: "\x1b[1;5C", name: "right", ctrl: true},
		{in: "\x1b[1;6D", name: "left", ctrl: true, shift: true},
		{in: "\x1b[1;9C", name: "right", meta: true},
		{in: "\x1b[3;5~", name: "delete", ctrl: true},
		{in: "\x1b[15;2~", name: "f5", shift: true},
		{in: "\x1b[5H", name: "home", ctrl: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res := Decode(tt.in)
			require.NotNil(t, res.Key)
			assert.Equal(t, tt.name, res.Key.Name)
			assert.Equal(t, tt.ctrl, res.Key.Ctrl, "ctrl")
			assert.Equal(t, tt.meta, res.Key.Meta, "meta")
			assert.Equal(t, tt.shift, res.Key.Shift, "shift")
		})
	}
}

func TestDecode_Code(t *testing.T) {
	res := Decode("\x1b[1;5C")
	require.NotNil(t, res.Key)
	assert.Equal(t, "[C", res.Key.Code)
}

func TestDecode_LiteralCharacters(t *testing.T) {
	for _, in := range []string{"1", "-", "/", "é", "世"} {
		res := Decode(in)
		assert.Nil(t, res.Key, in)
		assert.Equal(t, in, res.Char)
		assert.Equal(t, in, res.Text())
	}
}

func TestDecode_LetterKeepsChar(t *testing.T) {
	res := Decode("x")
	assert.Equal(t, "x", res.Char)
	assert.Equal(t, "x", res.Name())
	assert.Equal(t, "x", res.Text())
}

func TestDecode_ShortBurst(t *testing.T) {
	res := Decode("ab")
	assert.Nil(t, res.Key)
	assert.Equal(t, "ab", res.Text())
}

func TestDecode_UnknownEscape(t *testing.T) {
	res := Decode("\x1b[99~")
	require.NotNil(t, res.Key)
	assert.Equal(t, "", res.Key.Name)
	assert.Equal(t, "\x1b[99~", res.Key.Sequence)
	assert.Equal(t, "[99~", res.Text())

	res = Decode("\x1b]x")
	require.NotNil(t, res.Key)
	assert.Equal(t, "", res.Name())
	assert.Equal(t, "]x", res.Text())
}

func TestDecode_ControlTextIsNotInserted(t *testing.T) {
	assert.Equal(t, "", Decode("\x03").Text())
	assert.Equal(t, "", Decode("\r").Text())
	assert.Equal(t, "", Decode("").Text())
}
