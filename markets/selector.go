package markets

import (
	"regexp"
	"strings"

	"bookline/models"
)

// Name heuristics for picking the primary market. These string matches track
// the names the backend actually sends; changing them changes which market
// users see highlighted, so they are kept exactly as observed even though
// they are fragile to backend renames or localization.
var (
	ballNumberRe = regexp.MustCompile(`ball \d+`)

	winnerKeywords = []string{
		"match odds",
		"winner",
		"match result",
		"match winners",
		"match-winner",
		"match_winner",
		"match winner",
	}
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// isBallByBall matches the short-lived per-delivery markets cricket feeds
// interleave with the real match markets.
func isBallByBall(name string) bool {
	n := normalizeName(name)
	return strings.Contains(n, "ball by ball") ||
		strings.Contains(n, "ball-by-ball") ||
		strings.Contains(n, "next ball") ||
		strings.HasPrefix(n, "ball ") ||
		ballNumberRe.MatchString(n)
}

func isTossLike(name string) bool {
	n := normalizeName(name)
	return strings.Contains(n, "toss") ||
		strings.Contains(n, "coin") ||
		strings.Contains(n, "flip")
}

// SelectPrimaryMarket deterministically picks the one market a match card
// treats as canonical for quick wagering. Pure function: identical inputs
// always yield the identical market. The tie-break order matters; reordering
// the tiers makes cards flicker between markets as snapshots arrive.
//
//  1. For cricket, drop ball-by-ball markets, unless that would drop them all.
//  2. An exact "match winner" name wins.
//  3. Otherwise the first market whose name matches a winner-ish keyword.
//  4. Otherwise the first open, non-toss market with runners.
//  5. Otherwise the first candidate, or nil when there are no markets.
func SelectPrimaryMarket(marketList []models.Market, sport string) *models.Market {
	if len(marketList) == 0 {
		return nil
	}

	candidates := marketList
	if strings.EqualFold(strings.TrimSpace(sport), "cricket") {
		filtered := make([]models.Market, 0, len(marketList))
		for _, m := range marketList {
			if !isBallByBall(m.Name) {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	for i := range candidates {
		if normalizeName(candidates[i].Name) == "match winner" {
			m := candidates[i].Clone()
			return &m
		}
	}

	for i := range candidates {
		n := normalizeName(candidates[i].Name)
		for _, kw := range winnerKeywords {
			if n == kw || strings.Contains(n, kw) {
				m := candidates[i].Clone()
				return &m
			}
		}
	}

	for i := range candidates {
		m := &candidates[i]
		if m.IsOpen() && len(m.Runners) > 0 && !isTossLike(m.Name) {
			c := m.Clone()
			return &c
		}
	}

	m := candidates[0].Clone()
	return &m
}
