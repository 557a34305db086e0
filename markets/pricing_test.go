package markets

import (
	"math"
	"testing"

	"bookline/models"

	"github.com/stretchr/testify/assert"
)

func TestQuoteWager_Back(t *testing.T) {
	q := QuoteWager(models.WagerTypeBack, 2.5, 100)

	assert.Equal(t, 150.0, q.PotentialProfit)
	assert.Equal(t, 100.0, q.Liability)
}

func TestQuoteWager_Lay(t *testing.T) {
	q := QuoteWager(models.WagerTypeLay, 2.5, 100)

	assert.Equal(t, 100.0, q.PotentialProfit)
	assert.Equal(t, 150.0, q.Liability)
}

func TestQuoteWager_LayLiabilityFloorsAtZero(t *testing.T) {
	// Odds below 1 are invalid but must not produce a negative liability
	q := QuoteWager(models.WagerTypeLay, 0.5, 100)

	assert.Equal(t, 100.0, q.PotentialProfit)
	assert.Equal(t, 0.0, q.Liability)
}

func TestQuoteWager_InvalidInputNeverNaN(t *testing.T) {
	cases := []struct {
		name  string
		odds  float64
		stake float64
	}{
		{"nan stake", 2.0, math.NaN()},
		{"nan odds", math.NaN(), 100},
		{"infinite stake", 2.0, math.Inf(1)},
		{"infinite odds", math.Inf(1), 100},
		{"negative stake", 2.0, -50},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			for _, wt := range []models.WagerType{models.WagerTypeBack, models.WagerTypeLay} {
				q := QuoteWager(wt, tt.odds, tt.stake)
				assert.False(t, math.IsNaN(q.PotentialProfit))
				assert.False(t, math.IsInf(q.PotentialProfit, 0))
				assert.False(t, math.IsNaN(q.Liability))
				assert.False(t, math.IsInf(q.Liability, 0))
			}
		})
	}
}

func TestQuoteWager_NonFiniteOddsFloorAtZero(t *testing.T) {
	for _, odds := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		back := QuoteWager(models.WagerTypeBack, odds, 100)
		assert.Equal(t, 0.0, back.PotentialProfit)
		assert.Equal(t, 100.0, back.Liability)

		lay := QuoteWager(models.WagerTypeLay, odds, 100)
		assert.Equal(t, 100.0, lay.PotentialProfit)
		assert.Equal(t, 0.0, lay.Liability)
	}
}

func TestQuoteWager_ZeroStakeQuotesZero(t *testing.T) {
	for _, wt := range []models.WagerType{models.WagerTypeBack, models.WagerTypeLay} {
		q := QuoteWager(wt, 3.0, 0)
		assert.Equal(t, Quote{}, q)
	}
}

func TestQuoteWager_LiabilityFormulas(t *testing.T) {
	// The stake is always the back liability; the lay liability scales
	// with the odds
	for _, odds := range []float64{1.01, 1.5, 2.0, 10.0} {
		for _, stake := range []float64{1, 25, 100.50} {
			back := QuoteWager(models.WagerTypeBack, odds, stake)
			lay := QuoteWager(models.WagerTypeLay, odds, stake)

			assert.Equal(t, stake, back.Liability)
			assert.Equal(t, stake, lay.PotentialProfit)
			assert.InDelta(t, stake*(odds-1), back.PotentialProfit, 1e-9)
			assert.InDelta(t, stake*(odds-1), lay.Liability, 1e-9)
		}
	}
}

func TestParseStake(t *testing.T) {
	assert.Equal(t, 100.0, ParseStake("100"))
	assert.Equal(t, 25.5, ParseStake(" 25.5 "))
	assert.Equal(t, 0.0, ParseStake("abc"))
	assert.Equal(t, 0.0, ParseStake(""))
	assert.Equal(t, 0.0, ParseStake("-50"))
	assert.Equal(t, 0.0, ParseStake("NaN"))
	assert.Equal(t, 0.0, ParseStake("Inf"))
}

func TestRoundDisplay(t *testing.T) {
	assert.Equal(t, 15.55, RoundDisplay(15.554))
	assert.Equal(t, 15.56, RoundDisplay(15.557))
	assert.Equal(t, 2.5, RoundDisplay(2.5))
	assert.Equal(t, 0.0, RoundDisplay(math.NaN()))
	assert.Equal(t, 0.0, RoundDisplay(math.Inf(1)))
}
