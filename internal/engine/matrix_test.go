package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/monetate/monte-carlo-simulator/internal/draws"
	"github.com/monetate/monte-carlo-simulator/internal/record"
)

func TestNewMatrix(t *testing.T) {
	tests := []struct {
		name     string
		trials   int
		groups   int
		maxCells int
		wantErr  bool
		resource bool
	}{
		{"small", 2, 3, 0, false, false},
		{"at limit", 10, 10, 100, false, false},
		{"over limit", 10, 11, 100, true, true},
		{"overflow", int(^uint(0) >> 2), 4, 0, true, true},
		{"zero trials", 0, 1, 0, true, false},
		{"zero groups", 1, 0, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatrix(tt.trials, tt.groups, tt.maxCells)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if errors.Is(err, ErrResourceExhausted) != tt.resource {
					t.Errorf("errors.Is(ErrResourceExhausted) = %v, want %v", !tt.resource, tt.resource)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMatrix error = %v", err)
			}
			if m.Len() != tt.trials*tt.groups {
				t.Errorf("Len = %d, want %d", m.Len(), tt.trials*tt.groups)
			}
		})
	}
}

func TestMatrix_EachOrder(t *testing.T) {
	m, _ := NewMatrix(2, 3, 0)
	var got [][2]int
	_ = m.Each(func(trial, group int, _ Cell) error {
		got = append(got, [2]int{trial, group})
		return nil
	})
	want := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatrix_Merge(t *testing.T) {
	a, _ := NewMatrix(1, 2, 0)
	b, _ := NewMatrix(1, 2, 0)
	a.Set(0, 0, Cell{1, 2, 3})
	b.Set(0, 0, Cell{1, 1, 1})
	b.Set(0, 1, Cell{5, 5, 5})
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	if got := a.At(0, 0); got != (Cell{2, 3, 4}) {
		t.Errorf("At(0,0) = %+v", got)
	}
	if got := a.At(0, 1); got != (Cell{5, 5, 5}) {
		t.Errorf("At(0,1) = %+v", got)
	}

	c, _ := NewMatrix(2, 2, 0)
	if err := a.Merge(c); err == nil {
		t.Error("Merge with mismatched shape expected error")
	}
}

// Splitting the input, accumulating each half privately and merging gives
// the same matrix as one pass, because every entity sees the same draws.
func TestMatrix_MergeOfPartialRunsEqualsFullRun(t *testing.T) {
	entities := generated(40)
	sampler := newSampler(t, 1, 2, 1)
	e := newEngine(t, sampler, Config{Trials: 3})

	run := func(recs []record.Summary) *Matrix {
		src, err := draws.NewReplay([]float64{0.1, 0.5, 0.9})
		if err != nil {
			t.Fatal(err)
		}
		res, err := e.RunWithSource(context.Background(), newSliceSource(recs...), src)
		if err != nil {
			t.Fatal(err)
		}
		return res.Matrix
	}

	full := run(entities)
	merged := run(entities[20:])
	if err := merged.Merge(run(entities[:20])); err != nil {
		t.Fatal(err)
	}
	for i := range full.cells {
		if full.cells[i] != merged.cells[i] {
			t.Errorf("cell %d: full %+v merged %+v", i, full.cells[i], merged.cells[i])
		}
	}
}
