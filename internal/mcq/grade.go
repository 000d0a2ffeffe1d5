package mcq

import "github.com/jobsai/shortlister/internal/candidate"

// AnswerDetail records the grading outcome for one question.
type AnswerDetail struct {
	QuestionID int  `json:"question_id"`
	Selected   *int `json:"selected,omitempty"`
	Correct    int  `json:"correct"`
	IsCorrect  bool `json:"is_correct"`
}

// GradeResult is the outcome of grading a submitted test.
type GradeResult struct {
	ScorePercent   float64        `json:"score_percent"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Details        []AnswerDetail `json:"details"`
}

// Grade scores submitted answers (question id to selected option index)
// against the stored questions. Unanswered questions count as wrong. An
// empty test grades to zero, not an error.
func Grade(answers map[int]int, questions []candidate.TestQuestion) GradeResult {
	result := GradeResult{TotalQuestions: len(questions)}

	for _, q := range questions {
		detail := AnswerDetail{
			QuestionID: q.ID,
			Correct:    q.CorrectAnswer,
		}
		if selected, ok := answers[q.ID]; ok {
			v := selected
			detail.Selected = &v
			if selected == q.CorrectAnswer {
				detail.IsCorrect = true
				result.CorrectCount++
			}
		}
		result.Details = append(result.Details, detail)
	}

	if result.TotalQuestions > 0 {
		result.ScorePercent = round2(float64(result.CorrectCount) / float64(result.TotalQuestions) * 100)
	}
	return result
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
