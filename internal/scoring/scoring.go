// Package scoring turns round outcomes into coins.
package scoring

import "cardbattle/internal/game"

// SurvivalScorer rewards health kept alive and time left on the clock.
type SurvivalScorer struct {
	// HealthPerCoin is the surviving health worth one coin. Zero means 10.
	HealthPerCoin int
	// CoinsPerSecond is paid for every second remaining when a round was
	// committed. Zero means 1.
	CoinsPerSecond int
}

// Score implements game.Scorer.
func (s SurvivalScorer) Score(surviving []game.Card, roundTimes []int) int {
	perCoin := s.HealthPerCoin
	if perCoin <= 0 {
		perCoin = 10
	}
	perSecond := s.CoinsPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	health := 0
	for _, c := range surviving {
		if c.Health > 0 {
			health += c.Health
		}
	}
	seconds := 0
	for _, t := range roundTimes {
		if t > 0 {
			seconds += t
		}
	}
	return health/perCoin + seconds*perSecond
}

var _ game.Scorer = SurvivalScorer{}
