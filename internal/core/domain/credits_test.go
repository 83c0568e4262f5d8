package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationCost(t *testing.T) {
	tests := map[Tier]int{
		TierSmall:     1,
		TierMedium:    2,
		TierLarge:     5,
		TierHigh:      10,
		TierUltraHigh: 12,
		"XL":          10,
		"poster":      1,
	}
	for tier, want := range tests {
		assert.Equal(t, want, GenerationCost(tier), "tier %q", tier)
	}
}

func TestPurchaseCost(t *testing.T) {
	assert.Equal(t, 1, PurchaseCost(TierMedium))
	assert.Equal(t, 3, PurchaseCost(TierLarge))
	assert.Equal(t, 5, PurchaseCost(TierHigh))
	assert.Equal(t, 6, PurchaseCost(TierUltraHigh))
	assert.Equal(t, 1, PurchaseCost(TierSmall))
	assert.Equal(t, 1, PurchaseCost("unknown"))
}

func TestPurchaseCostFromGeneration(t *testing.T) {
	for gen, want := range map[int]int{0: 1, 1: 1, 2: 1, 3: 2, 5: 3, 10: 5, 11: 6, 12: 6} {
		assert.Equal(t, want, PurchaseCostFromGeneration(gen), "generation cost %d", gen)
	}
}

func TestCanAfford(t *testing.T) {
	assert.True(t, CanAfford(1, 1))
	assert.True(t, CanAfford(5, 1))
	assert.False(t, CanAfford(0, 1))
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{"s": TierSmall, "XXL": TierUltraHigh, "High": TierHigh, " medium ": TierMedium} {
		got, err := ParseTier(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseTier("huge")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestTier_Purchasable(t *testing.T) {
	assert.False(t, TierSmall.Purchasable())
	assert.False(t, Tier("poster").Purchasable())
	assert.Equal(t, []Tier{TierMedium, TierLarge, TierHigh, TierUltraHigh}, PurchasableTiers())
}

func TestCostTable(t *testing.T) {
	table := CostTable()
	require.Len(t, table, len(Tiers))
	assert.Equal(t, CostEntry{
		Tier:           TierLarge,
		Name:           "large",
		GenerationCost: 5,
		PurchaseCost:   3,
		Purchasable:    true,
		MaxPxSize:      8000,
	}, table[2])
}
