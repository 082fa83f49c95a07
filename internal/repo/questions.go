package repo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/asteroid-belt/recall/internal/errs"
	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/store"
)

// QuestionFilter narrows a question listing. Zero-valued fields are ignored.
type QuestionFilter struct {
	CategoryID  string
	Subcategory string
	Difficulty  string
}

// CreateQuestion stores a new question in the session's tenant.
func (r *Repo) CreateQuestion(ctx context.Context, sess Session, q models.Question) (*models.Question, error) {
	if q.TenantID == "" {
		q.TenantID = sess.TenantID
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, q.TenantID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	rec, err := toRecord(&q)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Add(ctx, CollectionQuestions, rec)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	q.ID = id
	return &q, nil
}

// GetQuestion retrieves a question, enforcing tenant isolation.
func (r *Repo) GetQuestion(ctx context.Context, sess Session, id string) (*models.Question, error) {
	rec, err := r.store.Get(ctx, CollectionQuestions, id)
	if err != nil {
		return nil, err
	}
	var q models.Question
	if err := fromRecord(rec, &q); err != nil {
		return nil, err
	}
	if err := checkTenant(sess, q.TenantID); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns the tenant's questions matching the filter. The
// narrowest available index serves the lookup; remaining filter fields and
// the tenant check are applied in memory, a deliberate simplicity trade-off
// at local-store scale.
func (r *Repo) ListQuestions(ctx context.Context, sess Session, f QuestionFilter) ([]models.Question, error) {
	var (
		recs []store.Record
		err  error
	)
	switch {
	case f.CategoryID != "" && f.Subcategory != "":
		recs, err = r.store.GetByIndex(ctx, CollectionQuestions, "category_sub", f.CategoryID, f.Subcategory)
	case f.CategoryID != "":
		recs, err = r.store.GetByIndex(ctx, CollectionQuestions, "category", f.CategoryID)
	default:
		recs, err = r.store.GetByIndex(ctx, CollectionQuestions, "tenant", sess.TenantID)
	}
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(recs))
	for _, rec := range recs {
		var q models.Question
		if err := fromRecord(rec, &q); err != nil {
			return nil, err
		}
		if !sess.IsAdmin() && q.TenantID != sess.TenantID {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// UpdateQuestion rewrites a question. A question referenced by any completed
// quiz attempt is immutable, so past scores stay reproducible.
func (r *Repo) UpdateQuestion(ctx context.Context, sess Session, q models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("update question: missing id")
	}
	existing, err := r.GetQuestion(ctx, sess, q.ID)
	if err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	if err := checkTenant(sess, q.TenantID); err != nil {
		return err
	}

	frozen, err := r.questionFrozen(ctx, existing)
	if err != nil {
		return err
	}
	if frozen {
		return fmt.Errorf("question %s referenced by a completed quiz: %w", q.ID, errs.ErrInvalidState)
	}

	q.CreatedAt = existing.CreatedAt
	q.UpdatedAt = time.Now().UTC()
	rec, err := toRecord(&q)
	if err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, CollectionQuestions, rec); err != nil {
		return fmt.Errorf("update question %s: %w", q.ID, err)
	}
	return nil
}

// questionFrozen reports whether any completed quiz of the question's tenant
// holds the question in its frozen set.
func (r *Repo) questionFrozen(ctx context.Context, q *models.Question) (bool, error) {
	recs, err := r.store.GetByIndex(ctx, CollectionQuizzes, "tenant", q.TenantID)
	if err != nil {
		return false, err
	}
	for _, rec := range recs {
		var quiz models.Quiz
		if err := fromRecord(rec, &quiz); err != nil {
			return false, err
		}
		if quiz.IsSubmitted() && slices.Contains(quiz.QuestionIDs, q.ID) {
			return true, nil
		}
	}
	return false, nil
}
