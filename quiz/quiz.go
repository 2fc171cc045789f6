// Package quiz builds multiple-choice questions from glossary terms and
// scores completed attempts. Everything here is pure: callers fetch terms and
// persist results.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

type Type string

const (
	TypeSrcToTgt        Type = "translation_src_to_tgt"
	TypeTgtToSrc        Type = "translation_tgt_to_src"
	TypeDefinitionMatch Type = "definition_match"
	TypeMixed           Type = "mixed"
)

// NoAnswer is recorded for questions the learner skipped.
const NoAnswer = "No answer"

// MaxOptions is the correct answer plus up to three distractors.
const MaxOptions = 4

var (
	ErrInvalidQuizType = errors.New("invalid quiz type")
	ErrInvalidCount    = errors.New("question count must be positive")
)

// legacy names still sent by older clients
var typeAliases = map[string]Type{
	"translation_kaa_en": TypeSrcToTgt,
	"translation_en_kaa": TypeTgtToSrc,
	"definition":         TypeDefinitionMatch,
	"multiple":           TypeMixed,
}

// ParseType accepts the canonical names and the legacy aliases. An empty
// value selects source-to-target translation.
func ParseType(raw string) (Type, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch Type(raw) {
	case "":
		return TypeSrcToTgt, nil
	case TypeSrcToTgt, TypeTgtToSrc, TypeDefinitionMatch, TypeMixed:
		return Type(raw), nil
	}
	if t, ok := typeAliases[raw]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidQuizType, raw)
}

// InsufficientDataError is returned when the candidate pool is smaller than
// the number of questions requested.
type InsufficientDataError struct {
	Requested int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough terms for quiz: requested %d, available %d", e.Requested, e.Available)
}

type Question struct {
	ID            int      `json:"id"`
	TermID        uint     `json:"term_id"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
}

// PublicQuestion is a Question without its answer, safe to send to learners.
type PublicQuestion struct {
	ID       int      `json:"id"`
	TermID   uint     `json:"term_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func ToPublicQuestions(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, PublicQuestion{
			ID:       q.ID,
			TermID:   q.TermID,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return public
}

// SessionID groups the attempts of one anonymous learner.
type SessionID string

type Detail struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

type Result struct {
	SessionID        SessionID `json:"session_id"`
	QuizType         Type      `json:"quiz_type"`
	Theme            string    `json:"theme"`
	TotalQuestions   int       `json:"total_questions"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	Percentage       int       `json:"percentage"`
	TimeSpent        int       `json:"time_spent"`
	Details          []Detail  `json:"details"`
}
