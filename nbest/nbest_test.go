package nbest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleList = `# utterance 4oac0201
gold	The Cat sat

-1200.5	the cat sat
-1210.25	the cat sad
-1300	the cat sat
-1250	a cat sat down
`

func TestParse(t *testing.T) {
	l, err := Parse("4oac0201", strings.NewReader(sampleList))
	require.NoError(t, err)

	assert.Equal(t, "4oac0201", l.ID)
	assert.Equal(t, []string{"the", "cat", "sat"}, l.Gold)
	require.Len(t, l.Hypotheses, 3)
	assert.Equal(t, []string{"the", "cat", "sat"}, l.Hypotheses[0].Words)
	assert.Equal(t, -1200.5, l.Hypotheses[0].Acoustic, "first occurrence keeps its score")
	assert.Equal(t, []string{"the", "cat", "sad"}, l.Hypotheses[1].Words)
	assert.Equal(t, []string{"a", "cat", "sat", "down"}, l.Hypotheses[2].Words)
}

func TestParseEmptyGold(t *testing.T) {
	l, err := Parse("silence", strings.NewReader("gold\t\n-3\tuh\n-4\t\n"))
	require.NoError(t, err)

	assert.Empty(t, l.Gold)
	require.Len(t, l.Hypotheses, 2)
	assert.Equal(t, []string{"uh"}, l.Hypotheses[0].Words)
	assert.Empty(t, l.Hypotheses[1].Words)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"no gold", "-1\ta b\n", ErrNoGold},
		{"two golds", "gold\ta\ngold\tb\n", ErrDuplicateGold},
		{"empty gold then gold", "gold\t\n-1\ta\ngold\ta\n", ErrDuplicateGold},
		{"missing tab", "gold\ta\n-1 a b\n", nil},
		{"bad score", "gold\ta\nabc\ta b\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "error = %v", err)
			}
		})
	}
}

func TestKey(t *testing.T) {
	assert.NotEqual(t, Key([]string{"ab", "c"}), Key([]string{"a", "bc"}))
	assert.NotEqual(t, Key([]string{"a b"}), Key([]string{"a", "b"}))
	assert.Equal(t, Key([]string{"a", "b"}), Key([]string{"a", "b"}))
	assert.Equal(t, "", Key(nil))
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.nbest"), []byte("gold\tb\n-1\tb\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.nbest"), []byte("gold\ta\n-1\ta\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	lists, err := ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "a", lists[0].ID)
	assert.Equal(t, "b", lists[1].ID)

	_, err = ReadDir(t.TempDir())
	assert.Error(t, err)
}

func TestRestrict(t *testing.T) {
	lists := []*List{
		NewList("1", []string{"the", "cat"}, []Hypothesis{
			{Words: []string{"the", "cat"}, Acoustic: -1},
			{Words: []string{"the", "zebra"}, Acoustic: -2},
		}),
		NewList("2", []string{"a", "zebra"}, []Hypothesis{{Words: []string{"a"}, Acoustic: -1}}),
		NewList("3", []string{"a"}, []Hypothesis{{Words: []string{"zebra"}, Acoustic: -1}}),
	}
	vocab := Vocabulary([][]string{{"the", "cat", "a"}})

	got := Restrict(lists, vocab)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	require.Len(t, got[0].Hypotheses, 1)
	assert.Len(t, lists[0].Hypotheses, 2, "input lists are not modified")
}

func TestGolds(t *testing.T) {
	lists := []*List{
		NewList("1", []string{"a"}, nil),
		NewList("2", []string{"b", "c"}, nil),
	}
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}}, Golds(lists))
}
