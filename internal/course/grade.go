package course

import (
	"math"

	"github.com/pot-code/course-gate/internal/domain"
)

// QuestionResult correction of one question
type QuestionResult struct {
	QuestionID  string           `json:"questionId"`
	Answer      string           `json:"answer"`
	Correct     bool             `json:"correct"`
	Expected    domain.AnswerSet `json:"expected,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
}

// QuizResult graded submission
type QuizResult struct {
	Score        int               `json:"score"`
	PassingScore int               `json:"passingScore"`
	Passed       bool              `json:"passed"`
	Correct      int               `json:"correct"`
	Total        int               `json:"total"`
	Questions    []*QuestionResult `json:"questions"`
}

// Grade score answers (question id -> answer) against quiz.
//
// Choice and true/false questions are correct when the answer is one of the
// expected answers. Free text questions are never graded automatically and count as wrong.
func Grade(quiz *domain.Quiz, answers map[string]string) *QuizResult {
	result := &QuizResult{
		PassingScore: quiz.PassingScore,
		Total:        len(quiz.Questions),
		Questions:    make([]*QuestionResult, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		answer := answers[q.ID]
		qr := &QuestionResult{
			QuestionID:  q.ID,
			Answer:      answer,
			Correct:     q.Type != domain.QuestionText && answer != "" && q.CorrectAnswer.Contains(answer),
			Explanation: q.Explanation,
		}
		if !qr.Correct {
			qr.Expected = q.CorrectAnswer
		} else {
			result.Correct++
		}
		result.Questions = append(result.Questions, qr)
	}
	if result.Total > 0 {
		result.Score = int(math.Round(float64(result.Correct) / float64(result.Total) * 100))
	}
	result.Passed = result.Score >= quiz.PassingScore
	return result
}
