package domain

import "strings"

// Tier is the size class of a map. Each tier has its own generation and
// purchase cost.
type Tier string

const (
	TierSmall     Tier = "s"
	TierMedium    Tier = "m"
	TierLarge     Tier = "l"
	TierHigh      Tier = "xl"
	TierUltraHigh Tier = "xxl"
)

// Tiers lists every tier from smallest to largest.
var Tiers = []Tier{TierSmall, TierMedium, TierLarge, TierHigh, TierUltraHigh}

type TierInfo struct {
	Name      string `json:"name"`
	Cost      int    `json:"cost"`
	MaxPxSize int    `json:"max_px_size"`
}

var generationCosts = map[Tier]TierInfo{
	TierSmall:     {Name: "small", Cost: 1, MaxPxSize: 2000},
	TierMedium:    {Name: "medium", Cost: 2, MaxPxSize: 5000},
	TierLarge:     {Name: "large", Cost: 5, MaxPxSize: 8000},
	TierHigh:      {Name: "high", Cost: 10, MaxPxSize: 11000},
	TierUltraHigh: {Name: "ultrahigh", Cost: 12, MaxPxSize: 15000},
}

var purchaseCosts = map[Tier]int{
	TierMedium:    1,
	TierLarge:     3,
	TierHigh:      5,
	TierUltraHigh: 6,
}

// ParseTier accepts a tier code ("xl") or display name ("high"),
// case-insensitive.
func ParseTier(s string) (Tier, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if _, ok := generationCosts[Tier(v)]; ok {
		return Tier(v), nil
	}
	for t, info := range generationCosts {
		if info.Name == v {
			return t, nil
		}
	}
	return "", ErrInvalidTier
}

func (t Tier) IsValid() bool {
	_, ok := generationCosts[t]
	return ok
}

// Info returns the tier's metadata. Unknown tiers report the zero value.
func (t Tier) Info() TierInfo {
	return generationCosts[t]
}

// Purchasable reports whether copies of maps of this tier can be bought.
// The smallest tier never is.
func (t Tier) Purchasable() bool {
	return t.IsValid() && t != TierSmall
}

// PurchasableTiers lists the tiers Purchasable accepts.
func PurchasableTiers() []Tier {
	out := make([]Tier, 0, len(Tiers))
	for _, t := range Tiers {
		if t.Purchasable() {
			out = append(out, t)
		}
	}
	return out
}

// GenerationCost returns the credits needed to generate a map of the tier.
// Unknown tiers cost 1.
func GenerationCost(t Tier) int {
	if info, ok := generationCosts[Tier(strings.ToLower(string(t)))]; ok {
		return info.Cost
	}
	return 1
}

// PurchaseCost returns the credits needed to buy a copy of a map of the
// tier. Tiers missing from the purchase table cost half their generation
// cost, rounded up, and never less than 1.
func PurchaseCost(t Tier) int {
	if cost, ok := purchaseCosts[Tier(strings.ToLower(string(t)))]; ok {
		return cost
	}
	return PurchaseCostFromGeneration(GenerationCost(t))
}

func PurchaseCostFromGeneration(generationCost int) int {
	cost := (generationCost + 1) / 2
	if cost < 1 {
		return 1
	}
	return cost
}

func CanAfford(balance, cost int) bool {
	return balance >= cost
}

// CostEntry is one row of the published cost table.
type CostEntry struct {
	Tier           Tier   `json:"tier"`
	Name           string `json:"name"`
	GenerationCost int    `json:"generation_cost"`
	PurchaseCost   int    `json:"purchase_cost"`
	Purchasable    bool   `json:"purchasable"`
	MaxPxSize      int    `json:"max_px_size"`
}

func CostTable() []CostEntry {
	out := make([]CostEntry, 0, len(Tiers))
	for _, t := range Tiers {
		info := t.Info()
		out = append(out, CostEntry{
			Tier:           t,
			Name:           info.Name,
			GenerationCost: GenerationCost(t),
			PurchaseCost:   PurchaseCost(t),
			Purchasable:    t.Purchasable(),
			MaxPxSize:      info.MaxPxSize,
		})
	}
	return out
}
