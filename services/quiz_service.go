package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"agroterms/models"
	"agroterms/quiz"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 100
	// candidates fetched per requested question, leaving room for distractors
	candidatePoolFactor = 4
)

// CandidateSource supplies random terms for a quiz.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, theme string, minimumCount int) ([]models.Term, error)
}

// ResultRecorder persists a scored attempt.
type ResultRecorder interface {
	Record(ctx context.Context, result quiz.Result) (uint, error)
}

// QuizSession is a generated quiz waiting for its answers.
type QuizSession struct {
	Type      quiz.Type       `json:"type"`
	Theme     string          `json:"theme"`
	Questions []quiz.Question `json:"questions"`
	CreatedAt time.Time       `json:"created_at"`
}

type QuizSessionStore interface {
	Save(ctx context.Context, id string, session *QuizSession) error
	// Take returns the session and removes it in one step, so a quiz can be
	// submitted once.
	Take(ctx context.Context, id string) (*QuizSession, error)
}

// RedisQuizSessions keeps quiz sessions as JSON under quiz:<id>.
type RedisQuizSessions struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisQuizSessions(client *redis.Client, ttl time.Duration) *RedisQuizSessions {
	return &RedisQuizSessions{redis: client, ttl: ttl}
}

func quizKey(id string) string {
	return "quiz:" + id
}

func (s *RedisQuizSessions) Save(ctx context.Context, id string, session *QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz session: %w", err)
	}
	if err := s.redis.Set(ctx, quizKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

func (s *RedisQuizSessions) Take(ctx context.Context, id string) (*QuizSession, error) {
	data, err := s.redis.GetDel(ctx, quizKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrQuizSessionNotFound
		}
		return nil, err
	}

	var session QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz session: %w", err)
	}
	return &session, nil
}

type QuizService struct {
	terms    CandidateSource
	sessions QuizSessionStore
	results  ResultRecorder

	mu  sync.Mutex
	rnd quiz.Rand
}

func NewQuizService(terms CandidateSource, sessions QuizSessionStore, results ResultRecorder, rnd quiz.Rand) *QuizService {
	if rnd == nil {
		rnd = quiz.NewRand()
	}
	return &QuizService{terms: terms, sessions: sessions, results: results, rnd: rnd}
}

type QuizRequest struct {
	Type  string `form:"type" json:"type"`
	Theme string `form:"theme" json:"theme"`
	Count int    `form:"count" json:"count"`
}

type GeneratedQuiz struct {
	QuizID    string                `json:"quiz_id"`
	QuizType  quiz.Type             `json:"quiz_type"`
	Theme     string                `json:"theme"`
	Questions []quiz.PublicQuestion `json:"questions"`
}

type SubmitRequest struct {
	SessionID string   `json:"session_id"`
	Answers   []string `json:"answers"`
	TimeSpent int      `json:"time_spent"`
}

type SubmittedQuiz struct {
	ResultID uint `json:"result_id,omitempty"`
	quiz.Result
}

// Generate builds a quiz and caches its answers until Submit. The learner
// only ever sees the public questions.
func (s *QuizService) Generate(ctx context.Context, req QuizRequest) (*GeneratedQuiz, error) {
	quizType, err := quiz.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	count := req.Count
	if count == 0 {
		count = DefaultQuestionCount
	}
	if count < 0 {
		return nil, quiz.ErrInvalidCount
	}
	if count > MaxQuestionCount {
		count = MaxQuestionCount
	}
	theme := req.Theme
	if theme == "" {
		theme = "all"
	}

	pool, err := s.terms.FetchCandidates(ctx, theme, count*candidatePoolFactor)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	questions, err := quiz.Generate(s.rnd, pool, quizType, count)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	session := &QuizSession{Type: quizType, Theme: theme, Questions: questions, CreatedAt: time.Now()}
	if err := s.sessions.Save(ctx, id, session); err != nil {
		return nil, err
	}

	return &GeneratedQuiz{
		QuizID:    id,
		QuizType:  quizType,
		Theme:     theme,
		Questions: quiz.ToPublicQuestions(questions),
	}, nil
}

// Submit scores the answers against a cached quiz. A scored result is
// returned even when it cannot be stored.
func (s *QuizService) Submit(ctx context.Context, quizID string, req SubmitRequest) (*SubmittedQuiz, error) {
	session, err := s.sessions.Take(ctx, quizID)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := quiz.Score(session.Questions, req.Answers, req.TimeSpent, quiz.SessionID(sessionID), session.Type, session.Theme)
	submitted := &SubmittedQuiz{Result: result}

	if id, err := s.results.Record(ctx, result); err != nil {
		log.Printf("Error recording quiz result for session %s: %v", sessionID, err)
	} else {
		submitted.ResultID = id
	}

	return submitted, nil
}

// RecordClientResult stores an attempt scored by the client. Totals and the
// percentage are recomputed from the details.
func (s *QuizService) RecordClientResult(ctx context.Context, result quiz.Result) (*SubmittedQuiz, error) {
	if result.SessionID == "" {
		result.SessionID = quiz.SessionID(uuid.NewString())
	}
	if result.QuizType == "" {
		result.QuizType = quiz.TypeSrcToTgt
	}
	result = quiz.Tally(result)

	id, err := s.results.Record(ctx, result)
	if err != nil {
		return nil, err
	}
	return &SubmittedQuiz{ResultID: id, Result: result}, nil
}
