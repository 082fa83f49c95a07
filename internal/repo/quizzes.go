package repo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
)

// CreateQuiz stores a new attempt with its category filter. The question set
// stays unset until first materialization.
func (r *Repo) CreateQuiz(ctx context.Context, sess Session, q models.Quiz) (*models.Quiz, error) {
	if q.UserID == "" {
		q.UserID = sess.UserID
	}
	if q.TenantID == "" {
		q.TenantID = sess.TenantID
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, q.TenantID); err != nil {
		return nil, err
	}
	q.QuestionIDs = nil
	q.Answers = nil
	q.MaterializedAt = nil
	q.CompletedAt = nil
	q.StartedAt = time.Now().UTC()
	rec, err := toRecord(&q)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionQuizzes, rec)
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	q.ID = id
	return &q, nil
}

// GetQuiz retrieves an attempt, enforcing tenant isolation.
func (r *Repo) GetQuiz(ctx context.Context, sess Session, id string) (*models.Quiz, error) {
	rec, err := r.store.Get(ctx, CollectionQuizzes, id)
	if err != nil {
		return nil, err
	}
	var q models.Quiz
	if err := fromRecord(rec, &q); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, q.TenantID); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuizzesForUser returns a user's attempts.
func (r *Repo) ListQuizzesForUser(ctx context.Context, sess Session, userID string) ([]models.Quiz, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionQuizzes, "user", userID)
	if err != nil {
		return nil, err
	}
	quizzes := make([]models.Quiz, 0, len(recs))
	for _, rec := range recs {
		var q models.Quiz
		if err := fromRecord(rec, &q); err != nil {
			return nil, err
		}
		if !sess.IsAdmin() && q.TenantID != sess.TenantID {
			continue
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, nil
}

// MaterializeQuestions freezes the quiz's question set. The first call
// selects candidates by the quiz's category/subcategory/difficulty filter,
// shuffles them (Fisher-Yates), truncates to the requested count and persists
// the chosen IDs. Every later call returns the persisted set unchanged, so
// grading stays deterministic regardless of question-bank edits. Fewer
// candidates than requested is not an error; the set is simply shorter,
// possibly empty.
func (r *Repo) MaterializeQuestions(ctx context.Context, sess Session, quizID string) ([]models.Question, error) {
	quiz, err := r.GetQuiz(ctx, sess, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsMaterialized() {
		return r.questionsByIDs(ctx, quiz.QuestionIDs)
	}
	if quiz.IsSubmitted() {
		return nil, fmt.Errorf("quiz %s already submitted: %w", quizID, errs.ErrInvalidState)
	}

	var candidates []models.Question
	for _, catID := range quiz.CategoryIDs {
		qs, err := r.ListQuestions(ctx, sess, QuestionFilter{
			CategoryID:  catID,
			Subcategory: quiz.Subcategory,
			Difficulty:  quiz.Difficulty,
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, qs...)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > quiz.QuestionCount {
		candidates = candidates[:quiz.QuestionCount]
	}

	ids := make([]string, len(candidates))
	for i, q := range candidates {
		ids[i] = q.ID
	}
	now := time.Now().UTC()
	quiz.QuestionIDs = ids
	quiz.MaterializedAt = &now
	rec, err := toRecord(quiz)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.Put(ctx, CollectionQuizzes, rec); err != nil {
		return nil, fmt.Errorf("freeze quiz %s: %w", quizID, err)
	}
	return candidates, nil
}

// SubmitQuiz grades the attempt against its frozen question set, stamps
// completion and folds every answer into the user's mastery aggregates.
func (r *Repo) SubmitQuiz(ctx context.Context, sess Session, quizID string, answers map[string]int) (*models.Quiz, error) {
	quiz, err := r.GetQuiz(ctx, sess, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsSubmitted() {
		return nil, fmt.Errorf("quiz %s already submitted: %w", quizID, errs.ErrInvalidState)
	}
	if !quiz.IsMaterialized() {
		return nil, fmt.Errorf("quiz %s has no materialized question set: %w", quizID, errs.ErrInvalidState)
	}

	// Scoring reads the frozen set, never a fresh filter query.
	questions, err := r.questionsByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, q := range questions {
		answer, answered := answers[q.ID]
		isCorrect := answered && answer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		if err := r.RecordAnswer(ctx, sess, quiz.UserID, q.CategoryID, q.Subcategory, isCorrect); err != nil {
			return nil, err
		}
	}

	total := len(questions)
	score := 0.0
	if total > 0 {
		score = math.Round(float64(correct)/float64(total)*100*100) / 100
	}
	now := time.Now().UTC()
	quiz.Answers = answers
	quiz.Score = score
	quiz.CorrectAnswers = correct
	quiz.TotalQuestions = total
	quiz.IsPassing = score >= models.PassingScore
	quiz.CompletedAt = &now

	rec, err := toRecord(quiz)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.Put(ctx, CollectionQuizzes, rec); err != nil {
		return nil, fmt.Errorf("submit quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// questionsByIDs loads questions preserving the frozen order.
func (r *Repo) questionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		rec, err := r.store.Get(ctx, CollectionQuestions, id)
		if err != nil {
			return nil, err
		}
		var q models.Question
		if err := fromRecord(rec, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}
