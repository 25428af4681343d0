package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuffer records what the search writes into the line buffer.
type fakeBuffer struct {
	text   string
	cursor int
	sets   int
}

func (b *fakeBuffer) Set(text string) {
	b.text = text
	b.cursor = len([]rune(text))
	b.sets++
}

func (b *fakeBuffer) SetCursor(i int) { b.cursor = i }

func typeQuery(s *Search, buf Target, q string) {
	for _, r := range q {
		s.Type(r, buf)
	}
}

func TestSearch_NearestMatchThenOlder(t *testing.T) {
	store := NewStore("foo", "alpha", "foobar", "alpha2")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "alpha")
	assert.Equal(t, "alpha2", buf.text)
	assert.Equal(t, 0, buf.cursor)
	assert.Equal(t, 4, s.MatchPosition())
	assert.False(t, s.Failed())

	require.True(t, s.Older(buf))
	assert.Equal(t, "alpha", buf.text, "older match must skip foobar")
	assert.Equal(t, 2, s.MatchPosition())

	assert.False(t, s.Older(buf))
	assert.True(t, s.Failed())
	assert.Equal(t, "alpha", buf.text, "a failed scan leaves the buffer alone")
	assert.Equal(t, 2, s.MatchPosition(), "a failed scan does not move the match position")
}

func TestSearch_CursorOnMatchStart(t *testing.T) {
	store := NewStore(`fmt.Println("héllo")`)
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "llo")
	assert.Equal(t, `fmt.Println("héllo")`, buf.text)
	// rune offset, not byte offset: "fmt.Println(\"hé" is 15 runes
	assert.Equal(t, 15, buf.cursor)
}

func TestSearch_MostRecentWinsOverExact(t *testing.T) {
	store := NewStore("go", "go build ./...")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "go")
	assert.Equal(t, "go build ./...", buf.text)
}

func TestSearch_FailingStatus(t *testing.T) {
	store := NewStore("abc")
	buf := &fakeBuffer{text: "draft"}
	s := NewSearch(store)

	assert.Equal(t, "history-search: _", s.Status())

	typeQuery(s, buf, "zz")
	assert.True(t, s.Failed())
	assert.Equal(t, "failing-history-search: zz_", s.Status())
	assert.Equal(t, "draft", buf.text)
	assert.Zero(t, buf.sets)
}

func TestSearch_BackspaceNarrowsAndEnds(t *testing.T) {
	store := NewStore("abc", "xyz")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "ab")
	typeQuery(s, buf, "q")
	require.True(t, s.Failed())

	require.True(t, s.Backspace(buf))
	assert.False(t, s.Failed())
	assert.Equal(t, "ab", s.Query())
	assert.Equal(t, "abc", buf.text)

	require.True(t, s.Backspace(buf))
	require.True(t, s.Backspace(buf))
	assert.Equal(t, "", s.Query())
	assert.False(t, s.Backspace(buf), "backspace on an empty query ends the search")
}

func TestSearch_TypingRestartsFromNewest(t *testing.T) {
	store := NewStore("ab1", "ab2", "ab3")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "a")
	s.Older(buf)
	s.Older(buf)
	assert.Equal(t, "ab1", buf.text)

	s.Type('b', buf)
	assert.Equal(t, "ab3", buf.text)
}

func TestSearch_OlderWithoutMatchStartsAtNewest(t *testing.T) {
	store := NewStore("one", "two", "three")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	require.True(t, s.Older(buf))
	assert.Equal(t, "three", buf.text)
	require.True(t, s.Older(buf))
	assert.Equal(t, "two", buf.text)
}

func TestSearch_OlderAfterFailedQueryStartsAtNewest(t *testing.T) {
	store := NewStore("zeta", "beta")
	buf := &fakeBuffer{}
	s := NewSearch(store)

	typeQuery(s, buf, "x")
	require.True(t, s.Failed())
	require.True(t, s.Backspace(buf))
	require.True(t, s.Older(buf))
	assert.Equal(t, "beta", buf.text)
}

func TestSearch_EmptyHistory(t *testing.T) {
	buf := &fakeBuffer{}
	s := NewSearch(NewStore())
	assert.False(t, s.Older(buf))
	assert.False(t, s.Type('x', buf))
	assert.True(t, s.Failed())
}
