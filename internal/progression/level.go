// Package progression implements the learner progression core: the
// experience ledger with derived levels, the daily streak state machine and
// the idempotent badge evaluator. All state lives behind a store.Gateway and
// every mutating operation for a user runs under that user's lock.
package progression

import "math"

// LevelThreshold returns the XP needed to advance from level to level+1:
// floor(100 * 1.5^(level-1)). Level 1 costs 100, level 2 costs 150.
func LevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// XPForLevel returns the cumulative XP at which level is reached.
func XPForLevel(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += LevelThreshold(l)
	}
	return total
}

// LevelFromXP derives the level for a total XP by walking the cumulative
// thresholds from level 1. It is pure and monotone in totalXP.
func LevelFromXP(totalXP int) int {
	level := 1
	remaining := totalXP
	for remaining >= LevelThreshold(level) {
		remaining -= LevelThreshold(level)
		level++
	}
	return level
}

// XPProgress describes how far a user is through their current level.
type XPProgress struct {
	Level      int     `json:"level"`
	Current    int     `json:"current"`
	Needed     int     `json:"needed"`
	Percentage float64 `json:"percentage"`
}

// XPProgressOf computes progress within the level derived from totalXP.
func XPProgressOf(totalXP int) XPProgress {
	level := LevelFromXP(totalXP)
	p := XPProgress{
		Level:   level,
		Current: totalXP - XPForLevel(level),
		Needed:  LevelThreshold(level),
	}
	if p.Current < 0 {
		p.Current = 0
	}
	p.Percentage = math.Min(100, float64(p.Current)/float64(p.Needed)*100)
	return p
}
