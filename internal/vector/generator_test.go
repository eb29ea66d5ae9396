package vector_test

import (
	"errors"
	"testing"

	"github.com/vector-portal/backend/internal/vector"
)

func TestGenerator_Deterministic(t *testing.T) {
	gen := vector.NewGenerator()

	first, err := gen.Generate("abc")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := gen.Generate("abc")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequences diverge at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestGenerator_LengthAndRange(t *testing.T) {
	gen := vector.NewGenerator()

	values, err := gen.Generate("test sentence")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(values) != 500 {
		t.Errorf("expected 500 values, got %d", len(values))
	}
	for i, v := range values {
		if v < 0 || v >= 2 {
			t.Errorf("value %d out of range [0, 2): %v", i, v)
		}
	}
}

func TestGenerator_DifferentSeedsDiffer(t *testing.T) {
	gen := vector.NewGenerator()

	first, err := gen.Generate("abc")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := gen.Generate("abd")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestGenerator_EmptySentence(t *testing.T) {
	gen := vector.NewGenerator()

	_, err := gen.Generate("")
	if !errors.Is(err, vector.ErrMissingSentence) {
		t.Errorf("expected ErrMissingSentence, got %v", err)
	}
}
