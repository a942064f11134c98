package draws

import (
	"math"
	"testing"
)

func TestNew_UnknownAlgorithm(t *testing.T) {
	if _, err := New("dsfmt", 1, 0); err == nil {
		t.Error("New with unknown algorithm expected error")
	}
	if _, err := New(MT19937, 1, -1); err == nil {
		t.Error("New with negative shard expected error")
	}
}

func TestPRNG_Range(t *testing.T) {
	for _, name := range Algorithms() {
		t.Run(name, func(t *testing.T) {
			src, err := New(Algorithm(name), 1234, 0)
			if err != nil {
				t.Fatalf("New(%s) error = %v", name, err)
			}
			buf := make([]float64, 10000)
			src.Fill(buf)
			sum := 0.0
			for i, u := range buf {
				if u < 0 || u >= 1 {
					t.Fatalf("draw %d = %v outside [0,1)", i, u)
				}
				sum += u
			}
			if mean := sum / float64(len(buf)); math.Abs(mean-0.5) > 0.02 {
				t.Errorf("mean = %v, want about 0.5", mean)
			}
		})
	}
}

func TestPRNG_Deterministic(t *testing.T) {
	for _, name := range Algorithms() {
		a, _ := New(Algorithm(name), 1234, 0)
		b, _ := New(Algorithm(name), 1234, 0)
		bufA := make([]float64, 64)
		bufB := make([]float64, 64)
		for round := 0; round < 3; round++ {
			a.Fill(bufA)
			b.Fill(bufB)
			for i := range bufA {
				if bufA[i] != bufB[i] {
					t.Fatalf("%s round %d draw %d differs: %v != %v", name, round, i, bufA[i], bufB[i])
				}
			}
		}
	}
}

func TestPRNG_ShardsDiffer(t *testing.T) {
	base, _ := New(MT19937, 1234, 0)
	other, _ := New(MT19937, 1234, 1)
	reseeded, _ := New(MT19937, ShardSeed(1234, 1), 0)

	bufBase := make([]float64, 16)
	bufOther := make([]float64, 16)
	bufReseeded := make([]float64, 16)
	base.Fill(bufBase)
	other.Fill(bufOther)
	reseeded.Fill(bufReseeded)

	same := 0
	for i := range bufBase {
		if bufBase[i] == bufOther[i] {
			same++
		}
		if bufOther[i] != bufReseeded[i] {
			t.Fatalf("shard 1 should equal base seed+1 at %d", i)
		}
	}
	if same == len(bufBase) {
		t.Error("shard 0 and shard 1 produced identical streams")
	}
}

func TestShardSeed(t *testing.T) {
	if got := ShardSeed(1234, 0); got != 1234 {
		t.Errorf("ShardSeed(1234, 0) = %d, want 1234", got)
	}
	if got := ShardSeed(1234, 3); got != 1237 {
		t.Errorf("ShardSeed(1234, 3) = %d, want 1237", got)
	}
}

func TestReplay(t *testing.T) {
	r, err := NewReplay([]float64{0.2, 0.8})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 5)
	r.Fill(buf)
	want := []float64{0.2, 0.8, 0.2, 0.8, 0.2}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	for _, bad := range [][]float64{nil, {1}, {-0.1}, {math.NaN()}} {
		if _, err := NewReplay(bad); err == nil {
			t.Errorf("NewReplay(%v) expected error", bad)
		}
	}
}

func TestAlgorithmValid(t *testing.T) {
	if !MT19937.Valid() || !Xoshiro.Valid() {
		t.Error("expected built-in algorithms to be valid")
	}
	if Algorithm("lcg").Valid() {
		t.Error("lcg should not be valid")
	}
}
