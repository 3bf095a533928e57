package participant

import (
	"math/rand"
	"testing"
)

func TestRegistry_AddAndLookup(t *testing.T) {
	r := NewRegistry()
	p := NewHuman("Ada", "🎮")

	if !r.Add(p) {
		t.Fatal("First add should succeed")
	}
	if r.Add(p) {
		t.Error("Duplicate add should be rejected")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 member, got %d", r.Len())
	}
	if got := r.Get(p.ID); got != p {
		t.Error("Get did not return the added participant")
	}
}

func TestRegistry_SimulatedFilter(t *testing.T) {
	r := NewRegistry()
	r.Add(NewHuman("Ada", "🎮"))

	rng := rand.New(rand.NewSource(1))
	for _, p := range Roster(3, rng) {
		r.Add(p)
	}

	if r.Len() != 4 {
		t.Fatalf("Expected 4 members, got %d", r.Len())
	}
	sims := r.Simulated()
	if len(sims) != 3 {
		t.Fatalf("Expected 3 simulated members, got %d", len(sims))
	}
	for _, p := range sims {
		if !p.Simulated || p.Style == "" {
			t.Errorf("Simulated member %q missing flag or style", p.Name)
		}
	}
}

func TestRoster_FreshIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := Roster(5, rng)
	b := Roster(5, rng)

	if len(a) != 5 || len(b) != 5 {
		t.Fatalf("Expected full roster, got %d and %d", len(a), len(b))
	}
	seen := make(map[string]bool)
	for _, p := range append(a, b...) {
		if seen[p.ID.String()] {
			t.Errorf("Duplicate ID across roster draws: %s", p.ID)
		}
		seen[p.ID.String()] = true
	}

	// Oversized requests are clamped to the cast size.
	if got := Roster(99, rng); len(got) != 5 {
		t.Errorf("Expected clamp to 5, got %d", len(got))
	}
}
