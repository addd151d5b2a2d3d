package tiles

import (
	"testing"

	"github.com/matryer/is"
)

func countByLetter(ts []Tile) map[string]int {
	m := make(map[string]int)
	for _, t := range ts {
		m[t.Letter]++
	}
	return m
}

func TestStandardSet(t *testing.T) {
	is := is.New(t)
	set := StandardSet()
	is.Equal(len(set), 100)

	counts := countByLetter(set)
	is.Equal(counts["E"], 12)
	is.Equal(counts["A"], 9)
	is.Equal(counts["Z"], 1)
	is.Equal(counts[Blank], 2)
}

func TestPointValues(t *testing.T) {
	is := is.New(t)
	for letter, want := range map[string]int{"A": 1, "D": 2, "Q": 10, "X": 8, Blank: 0} {
		got, err := PointValue(letter)
		is.NoErr(err)
		is.Equal(got, want)
	}
	_, err := PointValue("É")
	is.True(err != nil)
}

func TestShufflePreservesMultiset(t *testing.T) {
	set := StandardSet()
	before := countByLetter(set)
	Shuffle(set)
	after := countByLetter(set)
	if len(set) != 100 {
		t.Fatalf("shuffle changed tile count to %v", len(set))
	}
	for letter, ct := range before {
		if after[letter] != ct {
			t.Errorf("letter %v: had %v, now %v", letter, ct, after[letter])
		}
	}
}

func TestSplit(t *testing.T) {
	is := is.New(t)
	set := StandardSet()
	Shuffle(set)
	a, b := Split(set)
	is.Equal(len(a), 50)
	is.Equal(len(b), 50)
}

func TestSubtract(t *testing.T) {
	is := is.New(t)
	rack := []Tile{{"A", 1}, {"A", 1}, {"B", 3}, {Blank, 0}}

	remaining, err := Subtract(rack, []string{"A", "B"})
	is.NoErr(err)
	is.Equal(len(remaining), 2)
	is.Equal(countByLetter(remaining)["A"], 1)
	is.Equal(countByLetter(remaining)[Blank], 1)

	// rack itself untouched
	is.Equal(len(rack), 4)

	_, err = Subtract(rack, []string{"Z"})
	is.True(err != nil)
}
