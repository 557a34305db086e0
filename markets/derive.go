package markets

import (
	"fmt"
	"strings"
	"time"

	"bookline/models"
)

// Pure derivations from entity state, computed on read. Nothing here mutates
// the store.

// TossLine builds the toss summary for a match card, e.g.
// "India won the toss and elected to bat". Empty until the toss has happened.
func TossLine(m *models.Match) string {
	if m == nil || m.TossWinner == "" {
		return ""
	}
	decision := strings.ToLower(strings.TrimSpace(m.TossDecision))
	switch decision {
	case "bat", "batting":
		decision = "bat"
	case "bowl", "bowling", "field", "fielding":
		decision = "bowl"
	case "":
		return fmt.Sprintf("%s won the toss", m.TossWinner)
	}
	return fmt.Sprintf("%s won the toss and elected to %s", m.TossWinner, decision)
}

// TimeUntilStart formats how far away an upcoming match is. Matches already
// started (or starting inside a minute) read "Starting soon".
func TimeUntilStart(start, now time.Time) string {
	d := start.Sub(now)
	if d < time.Minute {
		return "Starting soon"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatOver renders the current over and ball as "over.ball", e.g. "12.4".
// Balls run 1-6; out-of-range values are clamped so a stray feed value never
// renders "12.7".
func FormatOver(over, ball int) string {
	if over < 0 {
		over = 0
	}
	if ball < 0 {
		ball = 0
	}
	if ball > 6 {
		ball = 6
	}
	return fmt.Sprintf("%d.%d", over, ball)
}

// RunsToTarget returns how many runs the batting side still needs, or 0 when
// there is no target (first innings) or it is already passed.
func RunsToTarget(m *models.Match) int {
	if m == nil || m.TargetRuns <= 0 {
		return 0
	}
	remaining := m.TargetRuns - m.Runs
	if remaining < 0 {
		return 0
	}
	return remaining
}
