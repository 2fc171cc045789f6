package quiz

import "math"

// Score compares answers, aligned by index, against questions. Matching is
// exact; a missing or empty answer counts as NoAnswer and is incorrect.
func Score(questions []Question, answers []string, elapsedSeconds int, session SessionID, quizType Type, theme string) Result {
	result := Result{
		SessionID:      session,
		QuizType:       quizType,
		Theme:          theme,
		TotalQuestions: len(questions),
		TimeSpent:      elapsedSeconds,
		Details:        make([]Detail, 0, len(questions)),
	}

	for i, q := range questions {
		submitted := NoAnswer
		if i < len(answers) && answers[i] != "" {
			submitted = answers[i]
		}
		isCorrect := submitted != NoAnswer && submitted == q.CorrectAnswer
		if isCorrect {
			result.CorrectAnswers++
		}
		result.Details = append(result.Details, Detail{
			Question:      q.Question,
			UserAnswer:    submitted,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
		})
	}

	result.IncorrectAnswers = result.TotalQuestions - result.CorrectAnswers
	result.Percentage = Percentage(result.CorrectAnswers, result.TotalQuestions)
	return result
}

// Percentage is round(100*correct/total), or 0 when total is 0.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Tally re-derives correctness and the counters of a result from its details.
// It is used for results scored by the client.
func Tally(r Result) Result {
	details := make([]Detail, len(r.Details))
	r.TotalQuestions = len(r.Details)
	r.CorrectAnswers = 0
	for i, d := range r.Details {
		if d.UserAnswer == "" {
			d.UserAnswer = NoAnswer
		}
		d.IsCorrect = d.UserAnswer != NoAnswer && d.UserAnswer == d.CorrectAnswer
		if d.IsCorrect {
			r.CorrectAnswers++
		}
		details[i] = d
	}
	r.Details = details
	r.IncorrectAnswers = r.TotalQuestions - r.CorrectAnswers
	r.Percentage = Percentage(r.CorrectAnswers, r.TotalQuestions)
	return r
}
