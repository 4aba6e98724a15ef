package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionAccuracy(t *testing.T) {
	rec := &SessionRecord{}
	assert.Zero(t, rec.Accuracy())

	rec.Shots = 4
	rec.Hits = 1
	assert.InDelta(t, 0.25, rec.Accuracy(), 1e-9)
}

func TestParseLeaderboardType(t *testing.T) {
	lt, ok := ParseLeaderboardType("")
	assert.True(t, ok)
	assert.Equal(t, LeaderboardEliminations, lt)

	lt, ok = ParseLeaderboardType("survival")
	assert.True(t, ok)
	assert.Equal(t, LeaderboardSurvival, lt)

	_, ok = ParseLeaderboardType("kills")
	assert.False(t, ok)
}

func TestLeaderboardKey(t *testing.T) {
	assert.Equal(t, LeaderboardSurvivalKey, LeaderboardKey(LeaderboardSurvival))
	assert.Equal(t, LeaderboardEliminationsKey, LeaderboardKey(LeaderboardEliminations))
	assert.Equal(t, LeaderboardEliminationsKey, LeaderboardKey("unknown"))
}
