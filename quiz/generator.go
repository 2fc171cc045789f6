package quiz

import (
	"fmt"

	"agroterms/models"
)

type direction int

const (
	kaaToEn direction = iota
	enToKaa
	definitionToEn
)

// Generate builds count questions of the given type from pool. Subjects are
// drawn uniformly without replacement; distractors come from the rest of the
// pool. The pool must hold at least count distinct terms.
func Generate(r Rand, pool []models.Term, quizType Type, count int) ([]Question, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if _, err := ParseType(string(quizType)); err != nil {
		return nil, err
	}

	terms := distinctTerms(pool)
	if len(terms) < count {
		return nil, &InsufficientDataError{Requested: count, Available: len(terms)}
	}

	order := make([]int, len(terms))
	for i := range order {
		order[i] = i
	}
	Shuffle(r, order)

	questions := make([]Question, 0, count)
	for n, idx := range order[:count] {
		subject := terms[idx]
		dir := directionFor(r, quizType)

		q := Question{
			ID:     n + 1,
			TermID: subject.ID,
		}
		q.Question, q.CorrectAnswer = prompt(subject, dir, quizType)

		others := make([]string, 0, len(terms)-1)
		for j, t := range terms {
			if j == idx {
				continue
			}
			others = append(others, answerField(t, dir))
		}
		q.Options = buildOptions(r, q.CorrectAnswer, others)

		questions = append(questions, q)
	}

	return questions, nil
}

func directionFor(r Rand, quizType Type) direction {
	switch quizType {
	case TypeTgtToSrc:
		return enToKaa
	case TypeDefinitionMatch:
		return definitionToEn
	case TypeMixed:
		if r.Intn(2) == 0 {
			return kaaToEn
		}
		return enToKaa
	default:
		return kaaToEn
	}
}

func prompt(t models.Term, dir direction, quizType Type) (question, answer string) {
	mixed := quizType == TypeMixed
	switch dir {
	case enToKaa:
		if mixed {
			return fmt.Sprintf("What is the Karakalpak translation of \"%s\"?", t.TermEn), t.TermKaa
		}
		return fmt.Sprintf("Translate to Karakalpak: \"%s\"", t.TermEn), t.TermKaa
	case definitionToEn:
		return fmt.Sprintf("Which term matches this definition: \"%s\"", t.DefinitionEn), t.TermEn
	default:
		if mixed {
			return fmt.Sprintf("What is the English translation of \"%s\"?", t.TermKaa), t.TermEn
		}
		return fmt.Sprintf("Translate to English: \"%s\"", t.TermKaa), t.TermEn
	}
}

func answerField(t models.Term, dir direction) string {
	if dir == enToKaa {
		return t.TermKaa
	}
	return t.TermEn
}

// buildOptions returns correct plus up to three distinct distractors in
// random order. A small pool yields fewer options; it is never padded.
func buildOptions(r Rand, correct string, candidates []string) []string {
	pool := make([]string, len(candidates))
	copy(pool, candidates)
	Shuffle(r, pool)

	options := []string{correct}
	seen := map[string]bool{correct: true}
	for _, c := range pool {
		if len(options) == MaxOptions {
			break
		}
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		options = append(options, c)
	}

	Shuffle(r, options)
	return options
}

// distinctTerms drops repeated ids. Unsaved terms (id 0) are kept as-is.
func distinctTerms(pool []models.Term) []models.Term {
	seen := make(map[uint]bool, len(pool))
	out := make([]models.Term, 0, len(pool))
	for _, t := range pool {
		if t.ID != 0 {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
		}
		out = append(out, t)
	}
	return out
}
