package types

import (
	"encoding/json"
	"testing"
)

func TestTierForBounds_CanonicalPairs(t *testing.T) {
	tests := []struct {
		name  string
		lower uint64
		upper uint64
		want  Tier
	}{
		{"seed", 0, 100_000, TierSeed},
		{"sprout", 100_000, 1_000_000, TierSprout},
		{"tree", 1_000_000, 5_000_000, TierTree},
		{"mountain", 5_000_000, 25_000_000, TierMountain},
		{"ocean", 25_000_000, 100_000_000, TierOcean},
		{"moon", 100_000_000, 500_000_000, TierMoon},
		{"sun", 500_000_000, 10_000_000_000_000, TierSun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TierForBounds(tt.lower, tt.upper)
			if !ok {
				t.Fatalf("TierForBounds(%d, %d) not classified", tt.lower, tt.upper)
			}
			if got != tt.want {
				t.Errorf("TierForBounds(%d, %d) = %v, want %v", tt.lower, tt.upper, got, tt.want)
			}
		})
	}
}

func TestTierForBounds_RejectsNonCanonicalPairs(t *testing.T) {
	tests := []struct {
		name  string
		lower uint64
		upper uint64
	}{
		{"overlapping boundaries", 0, 1_000_000},
		{"off by one lower", 1, 100_000},
		{"off by one upper", 100_000, 1_000_001},
		{"swapped pair", 100_000, 0},
		{"valid lower only", 5_000_000, 6_000_000},
		{"valid upper only", 20_000_000, 25_000_000},
		{"zero pair", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tier, ok := TierForBounds(tt.lower, tt.upper); ok {
				t.Errorf("TierForBounds(%d, %d) = %v, want rejection", tt.lower, tt.upper, tier)
			}
		})
	}
}

func TestBoundsForTier_RoundTrip(t *testing.T) {
	for tier := TierSeed; tier <= TierSun; tier++ {
		bounds, ok := BoundsForTier(tier)
		if !ok {
			t.Fatalf("BoundsForTier(%v) not found", tier)
		}

		got, ok := TierForBounds(bounds.Lower, bounds.Upper)
		if !ok || got != tier {
			t.Errorf("round trip for %v failed: got %v, ok=%v", tier, got, ok)
		}
	}

	if _, ok := BoundsForTier(Tier(0)); ok {
		t.Error("BoundsForTier(0) should not resolve")
	}
	if _, ok := BoundsForTier(Tier(8)); ok {
		t.Error("BoundsForTier(8) should not resolve")
	}
}

func TestTierValid(t *testing.T) {
	if Tier(0).Valid() {
		t.Error("Tier(0).Valid() = true, want false")
	}
	if !TierSun.Valid() {
		t.Error("TierSun.Valid() = false, want true")
	}
	if Tier(8).Valid() {
		t.Error("Tier(8).Valid() = true, want false")
	}
}

func TestNullifierJSON(t *testing.T) {
	var n Nullifier
	n[31] = 0x01

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `"0000000000000000000000000000000000000000000000000000000000000001"`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var decoded Nullifier
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != n {
		t.Errorf("round trip mismatch: %s != %s", decoded.Hex(), n.Hex())
	}

	if err := json.Unmarshal([]byte(`"abcd"`), &decoded); err == nil {
		t.Error("Unmarshal() accepted a short nullifier")
	}
}
