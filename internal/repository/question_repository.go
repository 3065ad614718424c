package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/nurseprep-backend/internal/model"
)

var ErrDuplicateQBankName = errors.New("question bank with this name already exists")

// QuestionRepository handles question bank and question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, qbank_id, question_type, prompt, scenario, rationale, client_needs, payload, order_num, created_at, updated_at`

func scanQuestion(row pgx.Row, q *model.Question) error {
	return row.Scan(&q.ID, &q.QBankID, &q.QuestionType, &q.Prompt, &q.Scenario, &q.Rationale,
		&q.ClientNeeds, &q.Payload, &q.OrderNum, &q.CreatedAt, &q.UpdatedAt)
}

// ─── Question banks ─────────────────────────────────────────────────

// GetBank retrieves a question bank with its question count.
func (r *QuestionRepository) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := r.pool.QueryRow(ctx,
		`SELECT b.id, b.author_id, b.name, b.description, b.created_at, b.updated_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.qbank_id = b.id)
		 FROM question_banks b WHERE b.id = $1`, id,
	).Scan(&b.ID, &b.AuthorID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt, &b.QuestionCount)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBanksPaginated lists question banks, optionally filtered by a name search.
func (r *QuestionRepository) ListBanksPaginated(ctx context.Context, search string, limit, offset int) ([]model.QuestionBank, int, error) {
	where := ""
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		where = ` WHERE b.name ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM question_banks b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT b.id, b.author_id, b.name, b.description, b.created_at, b.updated_at,
	                 (SELECT COUNT(*) FROM questions q WHERE q.qbank_id = b.id)
	          FROM question_banks b` + where +
		` ORDER BY b.created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt, &b.QuestionCount); err != nil {
			return nil, 0, err
		}
		banks = append(banks, b)
	}
	return banks, total, rows.Err()
}

// CreateBank inserts a new question bank.
func (r *QuestionRepository) CreateBank(ctx context.Context, b *model.QuestionBank) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (author_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		b.AuthorID, b.Name, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateQBankName
		}
		return err
	}
	return nil
}

// ─── Questions ──────────────────────────────────────────────────────

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	row := r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	if err := scanQuestion(row, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ListByBank retrieves all questions of a bank, ordered by order_num.
func (r *QuestionRepository) ListByBank(ctx context.Context, qbankID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE qbank_id = $1
		 ORDER BY order_num, created_at`, qbankID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (qbank_id, question_type, prompt, scenario, rationale, client_needs, payload, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		q.QBankID, q.QuestionType, q.Prompt, q.Scenario, q.Rationale, q.ClientNeeds, q.Payload, q.OrderNum,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// ReplaceAll deletes every question of the bank and inserts qs in a single
// transaction. Inserted ids are written back into qs.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, qbankID uuid.UUID, qs []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE qbank_id = $1`, qbankID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range qs {
		q := &qs[i]
		q.QBankID = qbankID
		batch.Queue(
			`INSERT INTO questions (qbank_id, question_type, prompt, scenario, rationale, client_needs, payload, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at, updated_at`,
			q.QBankID, q.QuestionType, q.Prompt, q.Scenario, q.Rationale, q.ClientNeeds, q.Payload, q.OrderNum,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE question_banks SET updated_at = NOW() WHERE id = $1`, qbankID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
