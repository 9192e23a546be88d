package story

import (
	"fmt"
	"time"
)

// AdvanceDelay 答对后进入下一题前的停留时间，给前端展示反馈用
const AdvanceDelay = 1500 * time.Millisecond

// QuizSession 问答环节状态机。
// 流转：选择 → 提交 → 答错可重试 / 答对后推进，最后一题答对即完成。
type QuizSession struct {
	questions []QuizQuestion
	index     int
	selected  string
	answered  bool
	correct   bool
	completed bool
	attempts  int
}

// NewQuizSession 创建问答会话；题目列表须已通过 Validate
func NewQuizSession(questions []QuizQuestion) *QuizSession {
	return &QuizSession{questions: questions, completed: len(questions) == 0}
}

// Current 返回当前题目；会话已完成时返回 nil
func (s *QuizSession) Current() *QuizQuestion {
	if s.completed {
		return nil
	}
	return &s.questions[s.index]
}

// Select 记录用户选择；已提交未重试前不允许改选
func (s *QuizSession) Select(option string) error {
	if s.completed {
		return fmt.Errorf("quiz already completed")
	}
	if s.answered {
		return fmt.Errorf("answer already submitted, retry or advance first")
	}
	for _, opt := range s.questions[s.index].Options {
		if opt == option {
			s.selected = option
			return nil
		}
	}
	return fmt.Errorf("option %q does not belong to the current question", option)
}

// Submit 判定当前选择，返回是否答对
func (s *QuizSession) Submit() (bool, error) {
	if s.completed {
		return false, fmt.Errorf("quiz already completed")
	}
	if s.selected == "" {
		return false, fmt.Errorf("no option selected")
	}
	if s.answered {
		return false, fmt.Errorf("answer already submitted")
	}
	s.answered = true
	s.attempts++
	s.correct = s.selected == s.questions[s.index].CorrectAnswer
	return s.correct, nil
}

// Retry 答错后清除本题的选择与判定，允许重新作答
func (s *QuizSession) Retry() error {
	if !s.answered {
		return fmt.Errorf("nothing to retry")
	}
	if s.correct {
		return fmt.Errorf("answer was correct, advance instead")
	}
	s.selected = ""
	s.answered = false
	return nil
}

// Advance 答对后推进到下一题；最后一题推进即完成
func (s *QuizSession) Advance() error {
	if s.completed {
		return fmt.Errorf("quiz already completed")
	}
	if !s.answered || !s.correct {
		return fmt.Errorf("current question not answered correctly")
	}
	s.index++
	s.selected = ""
	s.answered = false
	s.correct = false
	if s.index >= len(s.questions) {
		s.completed = true
	}
	return nil
}

// Completed 会话是否已答完全部题目
func (s *QuizSession) Completed() bool {
	return s.completed
}

// Attempts 累计提交次数，含答错后的重试
func (s *QuizSession) Attempts() int {
	return s.attempts
}
