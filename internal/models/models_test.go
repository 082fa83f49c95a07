package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMasteryScoreRecord(t *testing.T) {
	var m MasteryScore

	m.Record(true)
	assert.Equal(t, 100, m.RollingAverage)

	m.Record(false)
	assert.Equal(t, 50, m.RollingAverage)

	m.Record(true)
	assert.Equal(t, 67, m.RollingAverage, "2 of 3 rounds to 67")

	m.Record(true)
	assert.Equal(t, 75, m.RollingAverage)
	assert.Equal(t, 4, m.TotalAnswers)
	assert.Equal(t, 3, m.CorrectAnswers)
}

func TestQuizLifecyclePredicates(t *testing.T) {
	q := Quiz{}
	assert.False(t, q.IsMaterialized())
	assert.False(t, q.IsSubmitted())

	now := time.Now()
	q.QuestionIDs = []string{"q1"}
	assert.False(t, q.IsMaterialized(), "the stamp, not the set length, carries the state")

	q.MaterializedAt = &now
	assert.True(t, q.IsMaterialized())
	assert.False(t, q.IsSubmitted())

	q.QuestionIDs = nil
	assert.True(t, q.IsMaterialized(), "a frozen empty set stays materialized")

	q.CompletedAt = &now
	assert.True(t, q.IsSubmitted())
}

func TestQuizValidate(t *testing.T) {
	valid := Quiz{UserID: "u1", TenantID: "t1", CategoryIDs: []string{"c1"}, QuestionCount: 5}
	assert.NoError(t, valid.Validate())

	noCat := valid
	noCat.CategoryIDs = nil
	assert.Error(t, noCat.Validate())

	zeroCount := valid
	zeroCount.QuestionCount = 0
	assert.Error(t, zeroCount.Validate())
}

func TestStudyTimerIsRunning(t *testing.T) {
	timer := StudyTimer{StartedAt: time.Now()}
	assert.True(t, timer.IsRunning())

	now := time.Now()
	timer.StoppedAt = &now
	assert.False(t, timer.IsRunning())
}
