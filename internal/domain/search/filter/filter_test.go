package filter

import (
	"reflect"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestNew_Empty(t *testing.T) {
	f, err := New(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsEmpty() {
		t.Error("expected empty filters")
	}
	if (Filters{}).HasCauses() {
		t.Error("zero value must not constrain causes")
	}
}

func TestNew_NormalizesCauses(t *testing.T) {
	f, err := New([]string{" housing", "", "families", "housing"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(f.Causes(), []string{"housing", "families"}) {
		t.Errorf("Causes() = %v", f.Causes())
	}
}

func TestNew_OnlyBlankCauses(t *testing.T) {
	f, err := New([]string{"", "  "}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.HasCauses() {
		t.Errorf("Causes() = %v, want none", f.Causes())
	}
}

func TestNew_MinRating(t *testing.T) {
	r := floatPtr(4)
	f, err := New(nil, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	*r = 1
	if f.MinRating() == nil || *f.MinRating() != 4 {
		t.Errorf("MinRating() = %v, want 4", f.MinRating())
	}
	if f.IsEmpty() {
		t.Error("rating filter must not be empty")
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(nil, floatPtr(-1)); err == nil {
		t.Error("expected error for negative min_rating")
	}
	many := make([]string, MaxCauses+1)
	for i := range many {
		many[i] = "c"
	}
	if _, err := New(many, nil); err == nil {
		t.Error("expected error for too many causes")
	}
}

func TestWithCauses(t *testing.T) {
	base, _ := New(nil, floatPtr(3))
	f := base.WithCauses([]string{"veterans"})

	if !reflect.DeepEqual(f.Causes(), []string{"veterans"}) {
		t.Errorf("Causes() = %v", f.Causes())
	}
	if base.HasCauses() {
		t.Error("WithCauses must not modify the receiver")
	}
	if *f.MinRating() != 3 {
		t.Error("min rating lost")
	}
	if f.WithCauses(nil).HasCauses() {
		t.Error("nil causes must clear the constraint")
	}
}
