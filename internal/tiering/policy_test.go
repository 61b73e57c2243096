package tiering_test

import (
	"testing"

	"clipkeep/internal/tiering"
)

func TestChooseBoundaryInclusiveOnFullSide(t *testing.T) {
	const threshold = 1024
	policy := tiering.NewPolicy(threshold)

	cases := []struct {
		name string
		size int64
		want tiering.Tier
	}{
		{"well below", 10, tiering.TierFull},
		// The boundary belongs to the full tier by choice: media exactly at
		// the threshold keeps its payload.
		{"exactly at threshold", threshold, tiering.TierFull},
		{"one byte above", threshold + 1, tiering.TierMetadataOnly},
		{"far above", threshold * 100, tiering.TierMetadataOnly},
		{"zero", 0, tiering.TierFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Choose(tc.size); got != tc.want {
				t.Fatalf("Choose(%d) = %s, want %s", tc.size, got, tc.want)
			}
		})
	}
}
