package markets

import (
	"math"
	"strconv"
	"strings"

	"bookline/models"
)

// Quote holds the economics of a prospective wager. Values are kept at full
// precision; RoundDisplay is applied only at the display boundary.
type Quote struct {
	PotentialProfit float64 `json:"potentialProfit"`
	Liability       float64 `json:"liability"`
}

// QuoteWager computes potential profit and liability for a wager.
//
// BACK: profit = stake x (odds - 1), liability = stake (the stake itself is
// the amount at risk). LAY: profit = stake (the backer's stake becomes the
// layer's profit if the selection loses), liability = stake x max(0, odds-1)
// (what the layer must cover if the selection wins).
//
// Invalid input never panics or errors: a NaN, infinite or negative stake is
// treated as zero, and a computation that comes out non-finite (NaN or
// infinite odds) is floored at 0, never returned negative. Odds below 1 are
// not rejected here; minimum odds are the placement endpoint's to enforce.
func QuoteWager(wagerType models.WagerType, odds, stake float64) Quote {
	if math.IsNaN(stake) || math.IsInf(stake, 0) || stake < 0 {
		stake = 0
	}

	switch wagerType {
	case models.WagerTypeLay:
		return Quote{
			PotentialProfit: stake,
			Liability:       floorNonFinite(stake * math.Max(0, odds-1)),
		}
	default:
		return Quote{
			PotentialProfit: floorNonFinite(stake * (odds - 1)),
			Liability:       stake,
		}
	}
}

// floorNonFinite maps a NaN or infinite monetary result to 0
func floorNonFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseStake parses user-entered stake text. Anything unparseable, negative
// or non-finite comes back as 0, so downstream arithmetic stays NaN-free.
func ParseStake(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// RoundDisplay rounds a monetary value to 2 decimal places for display
func RoundDisplay(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
