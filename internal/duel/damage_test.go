package duel

import "testing"

func TestResolveDamageLowerScoreTakesDamage(t *testing.T) {
	cases := []struct {
		name        string
		scoreA      int
		scoreB      int
		multiplier  int
		wantDamage  int
		wantDamaged string
	}{
		{"a wins", 800, 500, 1, 300, "b"},
		{"b wins", 200, 900, 1, 700, "a"},
		{"multiplier scales", 600, 400, 3, 600, "b"},
		{"tie", 500, 500, 2, 0, ""},
		{"both zero is a tie", 0, 0, 4, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			damage, damaged := ResolveDamage("a", tc.scoreA, "b", tc.scoreB, tc.multiplier)
			if damage != tc.wantDamage {
				t.Fatalf("damage = %d, want %d", damage, tc.wantDamage)
			}
			if damaged != tc.wantDamaged {
				t.Fatalf("damaged = %q, want %q", damaged, tc.wantDamaged)
			}
		})
	}
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	health := map[string]int{"a": 100, "b": 3000}

	after := ApplyDamage(health, "a", 250)
	if after["a"] != 0 {
		t.Fatalf("health must clamp at zero, got %d", after["a"])
	}
	if after["b"] != 3000 {
		t.Fatalf("undamaged player's health changed: %d", after["b"])
	}

	// Already at zero: stays there.
	again := ApplyDamage(after, "a", 500)
	if again["a"] != 0 {
		t.Fatalf("zero health decreased further: %d", again["a"])
	}
}

func TestApplyDamageTieTouchesNobody(t *testing.T) {
	health := map[string]int{"a": 1200, "b": 900}
	after := ApplyDamage(health, "", 0)
	if after["a"] != 1200 || after["b"] != 900 {
		t.Fatalf("tie changed health: %v", after)
	}
}

func TestApplyDamageDoesNotMutateInput(t *testing.T) {
	health := map[string]int{"a": 1000, "b": 1000}
	_ = ApplyDamage(health, "b", 400)
	if health["b"] != 1000 {
		t.Fatalf("input map mutated: %d", health["b"])
	}
}

func TestRoundMultiplierProgression(t *testing.T) {
	want := []int{1, 1, 2, 2, 3, 3, 4}
	for i, w := range want {
		if got := RoundMultiplier(i + 1); got != w {
			t.Fatalf("RoundMultiplier(%d) = %d, want %d", i+1, got, w)
		}
	}
}
