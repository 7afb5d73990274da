package language

import (
	"math"
	"strings"
	"testing"
)

// animals is the two sentence corpus used for hand-checked values.
var animals = [][]string{
	{"the", "cat", "sat"},
	{"the", "dog", "ran"},
}

// pets trains a Good-Turing model whose estimates are all valid. Three pairs
// have no higher-count neighbours and back off.
var pets = splitLines(`the cat sat on the mat
the dog sat on the log
a cat ran to the dog
the dog ran to a cat
a dog sat on a mat`)

// farm has enough singletons and doubletons for discounting to take effect.
// Its Good-Turing factors exceed 1 for some counts, which drives a backoff
// weight negative.
var farm = splitLines(`the cat sat on the mat
the dog sat on the log
a cat ran to the dog
the dog ran to a cat
a dog sat on a mat
the cat ate the fish
a bird sat on the log
the bird ate a fish
the cat saw the bird
a dog saw the cat
the fish swam in the pond
a cat slept in the sun
the dog ate a bone
a bird flew over the house
the cat ran up the tree
my dog chased the ball
your cat ignored the mouse
the old man read a book
a young girl sang a song
the red car stopped at the light
his brother fixed the old bike
her sister painted a small room
the coach wrote on the board
we walked along the quiet river
they ate bread with cheese`)

func splitLines(text string) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, strings.Fields(line))
	}
	return out
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %.12f, want %.12f", name, got, want)
	}
}
