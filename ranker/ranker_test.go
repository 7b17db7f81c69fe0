package ranker

import (
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/embedding"
)

var fourItems = embedding.Matrix{
	{1, 0},
	{0.9, 0.1},
	{0, 1},
	{-1, 0},
}

func TestScores(t *testing.T) {
	got, err := Scores(fourItems, 0)
	if err != nil {
		t.Fatalf("Scores() error = %v", err)
	}
	want := []float64{1, 0.9, 0, -1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scores() = %v, want %v", got, want)
	}
}

func TestArgsort_StableOnTies(t *testing.T) {
	got := Argsort([]float64{3, 1, 2, 1, 3})
	want := []int{1, 3, 2, 0, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Argsort() = %v, want %v", got, want)
	}
}

func TestRank(t *testing.T) {
	tests := []struct {
		name        string
		query, n    int
		dir         Direction
		wantIndices []int
		wantOrdered []int
	}{
		{"nearest n=1", 0, 1, Nearest, []int{1, 0}, []int{0, 1}},
		{"farthest n=1", 0, 1, Farthest, []int{3, 2}, []int{3, 2}},
		{"n larger than rows", 2, 10, Nearest, []int{0, 3, 1, 2}, []int{2, 1, 0, 3}},
		{"n equals rows", 0, 4, Farthest, []int{3, 2, 1, 0}, []int{3, 2, 1, 0}},
		{"n max int nearest", 0, math.MaxInt, Nearest, []int{3, 2, 1, 0}, []int{0, 1, 2, 3}},
		{"n max int farthest", 0, math.MaxInt, Farthest, []int{3, 2, 1, 0}, []int{3, 2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Rank(fourItems, tt.query, tt.n, tt.dir)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if len(sel.Scores) != len(fourItems) {
				t.Errorf("len(Scores) = %d, want %d", len(sel.Scores), len(fourItems))
			}
			if !reflect.DeepEqual(sel.Indices, tt.wantIndices) {
				t.Errorf("Indices = %v, want %v", sel.Indices, tt.wantIndices)
			}
			if got := sel.Ordered(tt.dir); !reflect.DeepEqual(got, tt.wantOrdered) {
				t.Errorf("Ordered() = %v, want %v", got, tt.wantOrdered)
			}
		})
	}
}

func TestRank_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		m     embedding.Matrix
		query int
	}{
		{"empty matrix", nil, 0},
		{"negative row", fourItems, -1},
		{"row past end", fourItems, 4},
		{"ragged", embedding.Matrix{{1, 0}, {1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rank(tt.m, tt.query, 1, Nearest); !core.IsInvalidInput(err) {
				t.Errorf("Rank() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestEndToEnd_NearestNeighbourOfA(t *testing.T) {
	idx := embedding.NewIndexMap([]int64{1, 2, 3, 4})
	sel, err := Rank(fourItems, idx.Encode[1], 1, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	got := ExcludeSelf(Decode(sel, Nearest, idx.Decode), 1, 1)
	if ids := got.IDs(); !reflect.DeepEqual(ids, []int64{2}) {
		t.Errorf("neighbours of 1 = %v, want [2]", ids)
	}
}

func TestSelfExclusionAndCountBound(t *testing.T) {
	m := embedding.Matrix{{1, 2}, {2, 1}, {0.5, 0.5}, {3, 3}, {-1, 1}, {1, 1}}
	ids := []int64{10, 20, 30, 40, 50, 60}
	idx := embedding.NewIndexMap(ids)
	for _, dir := range []Direction{Nearest, Farthest} {
		for _, n := range []int{1, 2, 3, 5, 8} {
			for _, self := range ids {
				sel, err := Rank(m, idx.Encode[self], n, dir)
				if err != nil {
					t.Fatal(err)
				}
				got := ExcludeSelf(Decode(sel, dir, idx.Decode), self, n)
				if len(got) > n {
					t.Errorf("%s n=%d self=%d: %d results", dir, n, self, len(got))
				}
				for _, nb := range got {
					if nb.ID == self {
						t.Errorf("%s n=%d: result contains query id %d", dir, n, self)
					}
				}
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	m := embedding.Matrix{{1, 1}, {1, 1}, {1, 1}, {0, 1}}
	idx := embedding.NewIndexMap([]int64{1, 2, 3, 4})
	first, err := Rank(m, 0, 2, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	want := Decode(first, Nearest, idx.Decode)
	for i := 0; i < 20; i++ {
		sel, _ := Rank(m, 0, 2, Nearest)
		if got := Decode(sel, Nearest, idx.Decode); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d = %v, want %v", i, got, want)
		}
	}
	// 同分按行号升序
	if ids := want.IDs(); !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("tied ids = %v, want [1 2 3]", ids)
	}
}

func TestDecode_SkipsGaps(t *testing.T) {
	sel, err := Rank(fourItems, 0, 3, Nearest)
	if err != nil {
		t.Fatal(err)
	}
	got := Decode(sel, Nearest, map[int]int64{0: 1, 2: 3})
	if ids := got.IDs(); !reflect.DeepEqual(ids, []int64{1, 3}) {
		t.Errorf("Decode() ids = %v, want [1 3]", ids)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("farthest"); err != nil || d != Farthest {
		t.Errorf("ParseDirection(farthest) = %v, %v", d, err)
	}
	if d, err := ParseDirection(""); err != nil || d != Nearest {
		t.Errorf("ParseDirection(\"\") = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); !core.IsInvalidInput(err) {
		t.Errorf("ParseDirection(sideways) error = %v", err)
	}
}
