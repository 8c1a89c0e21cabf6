package fight

import (
	"maps"
)

// EndReason records why a fight finished.
type EndReason int

const (
	// EndDeath means exactly one fighter died.
	EndDeath EndReason = iota
	// EndDoubleKO means both fighters died in the same turn; a draw.
	EndDoubleKO
	// EndTurnLimit means Rules.MaxTurns was reached; a draw.
	EndTurnLimit
	// EndTimeout means the fight was aborted by the watchdog, the caller's
	// context or Abort; a draw.
	EndTimeout
	EndSurrender
	// EndDisconnect is a cancellation on behalf of one fighter, scored as its surrender.
	EndDisconnect
)

func (r EndReason) String() string {
	switch r {
	case EndDeath:
		return "death"
	case EndDoubleKO:
		return "double_ko"
	case EndTurnLimit:
		return "turn_limit"
	case EndTimeout:
		return "timeout"
	case EndSurrender:
		return "surrender"
	case EndDisconnect:
		return "disconnect"
	}
	return "unknown"
}

// NoWinner is the winner index of a draw.
const NoWinner = -1

// Summary is the immutable result of a finished fight.
type Summary struct {
	fightID    string
	winner     int
	reason     EndReason
	turns      int
	friendly   bool
	fighterIDs [2]string
	players    [2]bool
	scores     [2]int
	deltas     [2]int
	health     [2]int
	usage      [2]map[string]int
}

func newSummary(c *Controller, winner int, reason EndReason) *Summary {
	s := &Summary{
		fightID:  c.id,
		winner:   winner,
		reason:   reason,
		turns:    c.turn,
		friendly: c.friendly,
	}
	for i, f := range c.fighters {
		s.fighterIDs[i] = f.ID()
		s.players[i] = f.IsPlayer()
		s.scores[i] = f.Score()
		s.health[i] = f.Health()
		s.usage[i] = TallyActions(f.ActionHistory())
	}
	s.deltas = ScoreDeltas(winner, c.friendly, s.scores, c.rules.ScoreK)
	return s
}

func (s *Summary) FightID() string { return s.fightID }

// Winner returns the winning fighter index, or NoWinner for a draw.
func (s *Summary) Winner() int { return s.winner }

// IsDraw reports whether the fight ended without a winner.
func (s *Summary) IsDraw() bool { return s.winner == NoWinner }

func (s *Summary) Reason() EndReason { return s.reason }

// Turns is the number of the last turn played; zero if the fight ended before turn 1.
func (s *Summary) Turns() int { return s.turns }

func (s *Summary) Friendly() bool { return s.friendly }

func (s *Summary) FighterID(i int) string { return s.fighterIDs[i] }

func (s *Summary) IsPlayer(i int) bool { return s.players[i] }

// PreScore is fighter i's score before the fight.
func (s *Summary) PreScore(i int) int { return s.scores[i] }

func (s *Summary) ScoreDelta(i int) int { return s.deltas[i] }

// FinalHealth is fighter i's health when the fight ended.
func (s *Summary) FinalHealth(i int) int { return s.health[i] }

// ActionUsage returns a copy of fighter i's action counts.
func (s *Summary) ActionUsage(i int) map[string]int {
	return maps.Clone(s.usage[i])
}

// TimedOut reports a draw forced by the turn limit or the wall clock.
func (s *Summary) TimedOut() bool {
	return s.reason == EndTurnLimit || s.reason == EndTimeout
}
