package terminal

import (
	"unicode/utf8"

	"gosh/internal/types"
)

// maxSeqLen bounds how long an unterminated CSI sequence may grow before it
// is discarded.
const maxSeqLen = 16

var csiKeys = map[string]types.KeyCode{
	"A":  types.KeyUp,
	"B":  types.KeyDown,
	"C":  types.KeyRight,
	"D":  types.KeyLeft,
	"H":  types.KeyHome,
	"F":  types.KeyEnd,
	"1~": types.KeyHome,
	"7~": types.KeyHome,
	"4~": types.KeyEnd,
	"8~": types.KeyEnd,
	"2~": types.KeyInsert,
	"3~": types.KeyDelete,
}

var ss3Keys = map[byte]types.KeyCode{
	'A': types.KeyUp,
	'B': types.KeyDown,
	'C': types.KeyRight,
	'D': types.KeyLeft,
	'H': types.KeyHome,
	'F': types.KeyEnd,
}

// Decoder turns raw terminal bytes into key events. Sequences split across
// reads are held until the rest arrives, except a lone ESC at the end of a
// read, which is the escape key.
type Decoder struct {
	pending []byte
}

// Feed decodes p and returns the complete keys it contains.
func (d *Decoder) Feed(p []byte) []types.Key {
	buf := append(d.pending, p...)
	d.pending = nil

	var keys []types.Key
	for len(buf) > 0 {
		k, n, ok := decodeOne(buf)
		if n == 0 {
			d.pending = append([]byte(nil), buf...)
			break
		}
		buf = buf[n:]
		if ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// decodeOne decodes the key at the start of buf. n is the number of bytes
// consumed; n == 0 means buf holds an incomplete sequence. ok is false for
// consumed bytes that produce no key.
func decodeOne(buf []byte) (k types.Key, n int, ok bool) {
	b := buf[0]
	switch {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r':
		if len(buf) > 1 && buf[1] == '\n' {
			return types.Named(types.KeyEnter), 2, true
		}
		return types.Named(types.KeyEnter), 1, true
	case b == '\n':
		return types.Named(types.KeyEnter), 1, true
	case b == '\t':
		return types.Named(types.KeyTab), 1, true
	case b == 0x7f || b == 0x08:
		return types.Named(types.KeyBackspace), 1, true
	case b < 0x20:
		return types.Control(b), 1, true
	case b < utf8.RuneSelf:
		return types.Char(rune(b)), 1, true
	}

	if !utf8.FullRune(buf) {
		return types.Key{}, 0, false
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return types.Key{}, size, false
	}
	return types.Char(r), size, true
}

func decodeEscape(buf []byte) (types.Key, int, bool) {
	if len(buf) == 1 {
		return types.Named(types.KeyEscape), 1, true
	}

	switch buf[1] {
	case '[':
		for i := 2; i < len(buf); i++ {
			c := buf[i]
			if c < 0x40 || c > 0x7e {
				continue
			}
			code, ok := csiKeys[csiKey(buf[2:i+1])]
			return types.Named(code), i + 1, ok
		}
		if len(buf) >= maxSeqLen {
			return types.Key{}, len(buf), false
		}
		return types.Key{}, 0, false
	case 'O':
		if len(buf) < 3 {
			return types.Key{}, 0, false
		}
		code, ok := ss3Keys[buf[2]]
		return types.Named(code), 3, ok
	}
	return types.Named(types.KeyEscape), 1, true
}

// csiKey normalizes a CSI body: modifier parameters ("1;5C") are dropped so
// modified arrows behave like plain ones.
func csiKey(body []byte) string {
	final := body[len(body)-1]
	if final != '~' {
		return string(final)
	}
	params := body[:len(body)-1]
	for i, c := range params {
		if c == ';' {
			params = params[:i]
			break
		}
	}
	return string(params) + "~"
}
