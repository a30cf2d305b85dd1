package completion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProducer(words ...string) Producer {
	return func(index int, tokens []string, args ...any) ([]string, error) {
		return words, nil
	}
}

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry()
	a := r.Add(staticProducer("a"))
	b := r.Add(staticProducer("b"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CollectFiltersAndSorts(t *testing.T) {
	r := NewRegistry()
	r.Add(staticProducer("cut", "cat", "ls"))
	r.Add(staticProducer("cat", "cd"))

	got, err := r.Collect("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "cat", "cd", "cut"}, got)

	got, err = r.Collect("cu")
	require.NoError(t, err)
	assert.Equal(t, []string{"cut"}, got)
}

func TestRegistry_CollectKeepsDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Add(staticProducer("cat"))
	r.Add(staticProducer("cat"))

	got, err := r.Collect("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "cat"}, got)
}

func TestRegistry_CollectPassesTokenIndex(t *testing.T) {
	tests := []struct {
		fragment string
		index    int
		tokens   []string
	}{
		{fragment: "", index: 0, tokens: []string{}},
		{fragment: "   ", index: 0, tokens: []string{}},
		{fragment: "gi", index: 0, tokens: []string{"gi"}},
		{fragment: "git ", index: 1, tokens: []string{"git"}},
		{fragment: "git co", index: 1, tokens: []string{"git", "co"}},
		{fragment: `cat "my fi`, index: 1, tokens: []string{"cat", "my fi"}},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			r := NewRegistry()
			var gotIndex int
			var gotTokens []string
			r.Add(func(index int, tokens []string, args ...any) ([]string, error) {
				gotIndex = index
				gotTokens = tokens
				return nil, nil
			})

			_, err := r.Collect(tt.fragment)
			require.NoError(t, err)
			assert.Equal(t, tt.index, gotIndex)
			assert.Equal(t, tt.tokens, gotTokens)
		})
	}
}

func TestRegistry_CollectForwardsArgs(t *testing.T) {
	r := NewRegistry()
	var got []any
	r.Add(func(index int, tokens []string, args ...any) ([]string, error) {
		got = args
		return nil, nil
	}, "x", 2)

	_, err := r.Collect("a")
	require.NoError(t, err)
	assert.Equal(t, []any{"x", 2}, got)
}

func TestRegistry_CollectSurvivesFailingProducers(t *testing.T) {
	r := NewRegistry()
	r.Add(func(int, []string, ...any) ([]string, error) {
		return []string{"never"}, errors.New("boom")
	})
	r.Add(func(int, []string, ...any) ([]string, error) {
		panic("bad producer")
	})
	r.Add(staticProducer("cat", "cut"))

	got, err := r.Collect("c")
	assert.Equal(t, []string{"cat", "cut"}, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "bad producer")
}

func TestRegistry_NoProducers(t *testing.T) {
	got, err := NewRegistry().Collect("x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSharedPrefix(t *testing.T) {
	assert.Equal(t, "", SharedPrefix(nil))
	assert.Equal(t, "cat", SharedPrefix([]string{"cat"}))
	assert.Equal(t, "co", SharedPrefix([]string{"commit", "config", "cow"}))
	assert.Equal(t, "", SharedPrefix([]string{"a", "b"}))
	assert.Equal(t, "世", SharedPrefix([]string{"世界", "世纪"}))
}
