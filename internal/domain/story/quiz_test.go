package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			Question:      "Q1",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
		},
		{
			Question:      "Q2",
			Options:       []string{"E", "F", "G", "H"},
			CorrectAnswer: "E",
		},
	}
}

func TestQuizSessionHappyPath(t *testing.T) {
	s := NewQuizSession(twoQuestions())
	require.False(t, s.Completed())
	require.Equal(t, "Q1", s.Current().Question)

	require.NoError(t, s.Select("B"))
	correct, err := s.Submit()
	require.NoError(t, err)
	assert.True(t, correct)

	require.NoError(t, s.Advance())
	require.Equal(t, "Q2", s.Current().Question)

	require.NoError(t, s.Select("E"))
	correct, err = s.Submit()
	require.NoError(t, err)
	assert.True(t, correct)

	require.NoError(t, s.Advance())
	assert.True(t, s.Completed())
	assert.Nil(t, s.Current())
	assert.Equal(t, 2, s.Attempts())
}

func TestQuizSessionRetryAfterWrongAnswer(t *testing.T) {
	s := NewQuizSession(twoQuestions())

	require.NoError(t, s.Select("A"))
	correct, err := s.Submit()
	require.NoError(t, err)
	assert.False(t, correct)

	// 答错后不允许直接推进
	assert.Error(t, s.Advance())

	require.NoError(t, s.Retry())
	require.NoError(t, s.Select("B"))
	correct, err = s.Submit()
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, 2, s.Attempts())
}

func TestQuizSessionGuards(t *testing.T) {
	s := NewQuizSession(twoQuestions())

	t.Run("submit without selection", func(t *testing.T) {
		_, err := s.Submit()
		assert.Error(t, err)
	})

	t.Run("select foreign option", func(t *testing.T) {
		assert.Error(t, s.Select("Z"))
	})

	t.Run("reselect after submit", func(t *testing.T) {
		require.NoError(t, s.Select("B"))
		_, err := s.Submit()
		require.NoError(t, err)
		assert.Error(t, s.Select("A"))
	})

	t.Run("retry after correct answer", func(t *testing.T) {
		assert.Error(t, s.Retry())
	})
}

func TestQuizSessionEmptyQuestionsIsCompleted(t *testing.T) {
	s := NewQuizSession(nil)
	assert.True(t, s.Completed())
	assert.Nil(t, s.Current())
	assert.Error(t, s.Select("A"))
}
