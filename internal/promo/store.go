package promo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PromotionStore is the persistence surface the handlers depend on.
type PromotionStore interface {
	Create(ctx context.Context, p *Promotion) (*Promotion, error)
	Get(ctx context.Context, id int64) (*Promotion, error)
	Update(ctx context.Context, p *Promotion) (*Promotion, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Promotion, error)
	ExpireOverdue(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// ListFilter restricts a promotion listing. Role and Keyword are
// optional; StartDate and EndDate must be supplied together.
type ListFilter struct {
	Role      string
	Keyword   string
	StartDate *time.Time
	EndDate   *time.Time
}

// StatusesForRole resolves a caller role to the statuses it may see.
// An empty role means no restriction; unknown roles are rejected.
func StatusesForRole(role string) ([]Status, error) {
	switch role {
	case "":
		return nil, nil
	case "customer":
		return []Status{StatusActive}, nil
	case "supplier":
		return []Status{StatusActive, StatusExpired}, nil
	case "manager":
		return nil, nil
	}
	return nil, NewError(KindBadRequest, "invalid role: %s", role)
}

// Store is the pgx-backed PromotionStore.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const promotionColumns = `id, product_name, description, original_price, discount_value,
	discount_type, promotion_type, start_date, expiration_date, status, created_at, updated_at`

func scanPromotion(row pgx.Row) (*Promotion, error) {
	var (
		p             Promotion
		originalPrice pgtype.Numeric
		discountValue pgtype.Numeric
		discountType  *string
	)
	err := row.Scan(
		&p.ID, &p.ProductName, &p.Description, &originalPrice, &discountValue,
		&discountType, &p.PromotionType, &p.StartDate, &p.ExpirationDate,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.OriginalPrice, err = numericToFloat64(originalPrice)
	if err != nil {
		return nil, errors.Wrap(err, "original_price")
	}
	if discountValue.Valid {
		v, err := numericToFloat64(discountValue)
		if err != nil {
			return nil, errors.Wrap(err, "discount_value")
		}
		p.DiscountValue = &v
	}
	if discountType != nil {
		dt := DiscountType(*discountType)
		p.DiscountType = &dt
	}
	return &p, nil
}

// classifyStoreError tags commit-time failures so constraint violations
// surface with the right kind even when a racing insert beats the
// application-level validation.
func classifyStoreError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return WrapError(KindConflict, err, "duplicate product_name")
		case "23514": // check_violation
			return WrapError(KindUnprocessable, err, fmt.Sprintf("constraint violated: %s", pgErr.ConstraintName))
		}
	}
	return errors.Wrap(err, "promotion store")
}

func (s *Store) insertParams(p *Promotion) (pgtype.Numeric, pgtype.Numeric, *string, error) {
	originalPrice, err := float64ToNumeric(p.OriginalPrice)
	if err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, nil, err
	}
	var discountValue pgtype.Numeric
	if p.DiscountValue != nil {
		discountValue, err = float64ToNumeric(*p.DiscountValue)
		if err != nil {
			return pgtype.Numeric{}, pgtype.Numeric{}, nil, err
		}
	}
	var discountType *string
	if p.DiscountType != nil {
		dt := string(*p.DiscountType)
		discountType = &dt
	}
	return originalPrice, discountValue, discountType, nil
}

// Create inserts a new promotion in its own transaction and returns
// the stored row with server-assigned fields populated.
func (s *Store) Create(ctx context.Context, p *Promotion) (*Promotion, error) {
	originalPrice, discountValue, discountType, err := s.insertParams(p)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin create")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanPromotion(tx.QueryRow(ctx, `
		INSERT INTO promotions (product_name, description, original_price, discount_value,
			discount_type, promotion_type, start_date, expiration_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+promotionColumns,
		p.ProductName, p.Description, originalPrice, discountValue,
		discountType, string(p.PromotionType), p.StartDate, p.ExpirationDate, string(p.Status),
	))
	if err != nil {
		return nil, classifyStoreError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyStoreError(err)
	}
	return created, nil
}

// Get returns a promotion by id.
func (s *Store) Get(ctx context.Context, id int64) (*Promotion, error) {
	p, err := scanPromotion(s.pool.QueryRow(ctx, `
		SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewError(KindNotFound, "promotion with id %d not found", id)
		}
		return nil, errors.Wrap(err, "get promotion")
	}
	return p, nil
}

// Update rewrites every caller-settable column and refreshes
// updated_at, all in one transaction.
func (s *Store) Update(ctx context.Context, p *Promotion) (*Promotion, error) {
	originalPrice, discountValue, discountType, err := s.insertParams(p)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin update")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated, err := scanPromotion(tx.QueryRow(ctx, `
		UPDATE promotions
		SET product_name = $2, description = $3, original_price = $4, discount_value = $5,
			discount_type = $6, promotion_type = $7, start_date = $8, expiration_date = $9,
			status = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+promotionColumns,
		p.ID, p.ProductName, p.Description, originalPrice, discountValue,
		discountType, string(p.PromotionType), p.StartDate, p.ExpirationDate, string(p.Status),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewError(KindNotFound, "promotion with id %d not found", p.ID)
		}
		return nil, classifyStoreError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyStoreError(err)
	}
	return updated, nil
}

// Delete removes a promotion. Deleting an absent promotion is a no-op;
// deleting an active one is a conflict and leaves the row unchanged.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin delete")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	err = tx.QueryRow(ctx, `SELECT status FROM promotions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return errors.Wrap(err, "delete lookup")
	}
	if status == StatusActive {
		return NewError(KindConflict, "cannot delete an active promotion; deactivate it first")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id); err != nil {
		return classifyStoreError(err)
	}
	return errors.Wrap(tx.Commit(ctx), "commit delete")
}

// List returns promotions scoped by role, keyword, and date range.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Promotion, error) {
	statuses, err := StatusesForRole(filter.Role)
	if err != nil {
		return nil, err
	}

	var (
		clauses []string
		args    []any
	)
	if statuses != nil {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			args = append(args, string(st))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(product_name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d", len(args)))
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("expiration_date <= $%d", len(args)))
	}

	query := `SELECT ` + promotionColumns + ` FROM promotions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list promotions")
	}
	defer rows.Close()

	out := []Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan promotion")
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "list promotions")
}

// ExpireOverdue transitions every active promotion whose expiration
// date has passed to expired, and reports how many rows changed. The
// list handler runs it before filtering; it is equally suitable for a
// periodic background task.
func (s *Store) ExpireOverdue(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE promotions
		SET status = $1, updated_at = now()
		WHERE status = $2 AND expiration_date < now()`,
		string(StatusExpired), string(StatusActive),
	)
	if err != nil {
		return 0, errors.Wrap(err, "expire overdue promotions")
	}
	return tag.RowsAffected(), nil
}

// Reset purges all promotions. Exposed only through the test-support
// endpoint.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM promotions`)
	return errors.Wrap(err, "reset promotions")
}
