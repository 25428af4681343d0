package terminal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"gosh/internal/types"
)

func TestDecoder_Feed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []types.Key
	}{
		{"printable", "ab", []types.Key{types.Char('a'), types.Char('b')}},
		{"multibyte rune", "é日", []types.Key{types.Char('é'), types.Char('日')}},
		{"enter variants", "\r\n\n\r", []types.Key{types.Named(types.KeyEnter), types.Named(types.KeyEnter), types.Named(types.KeyEnter)}},
		{"controls", "\x01\x05\x12\x11\x03\x04", []types.Key{
			types.Control(0x01), types.Control(0x05), types.Control(0x12),
			types.Control(0x11), types.Control(0x03), types.Control(0x04),
		}},
		{"backspace and tab", "\x7f\x08\t", []types.Key{
			types.Named(types.KeyBackspace), types.Named(types.KeyBackspace), types.Named(types.KeyTab),
		}},
		{"csi arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []types.Key{
			types.Named(types.KeyUp), types.Named(types.KeyDown), types.Named(types.KeyRight), types.Named(types.KeyLeft),
		}},
		{"ss3 arrows", "\x1bOA\x1bOD", []types.Key{types.Named(types.KeyUp), types.Named(types.KeyLeft)}},
		{"home end", "\x1b[H\x1b[F\x1b[1~\x1b[4~\x1bOH\x1bOF", []types.Key{
			types.Named(types.KeyHome), types.Named(types.KeyEnd), types.Named(types.KeyHome),
			types.Named(types.KeyEnd), types.Named(types.KeyHome), types.Named(types.KeyEnd),
		}},
		{"insert delete", "\x1b[2~\x1b[3~", []types.Key{types.Named(types.KeyInsert), types.Named(types.KeyDelete)}},
		{"modified arrow", "\x1b[1;5C", []types.Key{types.Named(types.KeyRight)}},
		{"unknown csi dropped", "\x1b[99~x", []types.Key{types.Char('x')}},
		{"lone escape", "\x1b", []types.Key{types.Named(types.KeyEscape)}},
		{"escape then char", "\x1bx", []types.Key{types.Named(types.KeyEscape), types.Char('x')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			got := d.Feed([]byte(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Feed(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDecoder_SplitSequences(t *testing.T) {
	var d Decoder

	if got := d.Feed([]byte("\x1b[")); len(got) != 0 {
		t.Fatalf("partial CSI produced keys: %v", got)
	}
	got := d.Feed([]byte("3~a"))
	want := []types.Key{types.Named(types.KeyDelete), types.Char('a')}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	rune3 := []byte("日")
	if got := d.Feed(rune3[:2]); len(got) != 0 {
		t.Fatalf("partial rune produced keys: %v", got)
	}
	got = d.Feed(rune3[2:])
	if diff := cmp.Diff([]types.Key{types.Char('日')}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
