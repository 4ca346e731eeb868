package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studymatch/backend/internal/roles"
)

func TestReliability(t *testing.T) {
	tests := []struct {
		status   QuizStatus
		answered int
		total    int
		want     float64
	}{
		{QuizCompleted, 6, 6, 1.0},
		{QuizCompleted, 2, 9, 1.0},
		{QuizSkipped, 3, 6, 0.0},
		{QuizNotStarted, 0, 6, 0.0},
		{QuizInProgress, 3, 6, 0.5},
		{QuizInProgress, 1, 4, 0.25},
		{QuizInProgress, 1, 0, 0.0},
	}
	for _, tt := range tests {
		got := Reliability(tt.status, tt.answered, tt.total)
		if got != tt.want {
			t.Errorf("Reliability(%s, %d, %d) = %v, want %v", tt.status, tt.answered, tt.total, got, tt.want)
		}
	}
}

func TestRefreshOverwritesReliabilityAndClamps(t *testing.T) {
	p := &CharacteristicProfile{
		QuizStatus:            QuizSkipped,
		ReliabilityPercentage: 0.9,
		RoleScores:            roles.Vector{1.4, -0.1, 0.5},
	}
	p.Refresh()

	assert.Equal(t, 0.0, p.ReliabilityPercentage)
	assert.Equal(t, roles.Vector{1, 0, 0.5}, p.RoleScores)
}

func TestSummaryRequiresOnboarding(t *testing.T) {
	p := NewCharacteristicProfile(4)
	assert.True(t, p.Summary().RequiresOnboarding)

	p.QuizStatus = QuizSkipped
	assert.False(t, p.Summary().RequiresOnboarding)
}

func TestStudyGroupIsFull(t *testing.T) {
	assert.False(t, StudyGroup{MaxSize: 0, MemberCount: 40}.IsFull())
	assert.False(t, StudyGroup{MaxSize: 5, MemberCount: 4}.IsFull())
	assert.True(t, StudyGroup{MaxSize: 5, MemberCount: 5}.IsFull())
}
