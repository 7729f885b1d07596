package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgres creates a pgx connection pool from a connection string and
// verifies connectivity before returning it.
func NewPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS promotions (
	id              BIGSERIAL PRIMARY KEY,
	product_name    VARCHAR(255) NOT NULL UNIQUE,
	description     VARCHAR(1024),
	original_price  NUMERIC(10,2) NOT NULL,
	discount_value  NUMERIC(10,2),
	discount_type   TEXT,
	promotion_type  TEXT NOT NULL,
	start_date      TIMESTAMPTZ NOT NULL DEFAULT now(),
	expiration_date TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL DEFAULT 'draft',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT chk_original_price_positive CHECK (original_price > 0),
	CONSTRAINT chk_discount_value_valid CHECK (
		(discount_type IS NULL AND discount_value IS NULL) OR
		(discount_type = 'amount' AND discount_value <= original_price) OR
		(discount_type = 'percent' AND discount_value >= 0 AND discount_value <= 100)
	),
	CONSTRAINT chk_expiration_after_start CHECK (expiration_date >= start_date),
	CONSTRAINT chk_promotion_type_consistent CHECK (
		(promotion_type = 'other' AND discount_value IS NULL AND discount_type IS NULL)
		OR promotion_type = 'discount'
	)
);

CREATE INDEX IF NOT EXISTS ix_promotions_status ON promotions (status);
CREATE INDEX IF NOT EXISTS ix_promotions_expiration_date ON promotions (expiration_date);
CREATE INDEX IF NOT EXISTS ix_promotions_type ON promotions (promotion_type);
CREATE INDEX IF NOT EXISTS ix_promotions_discount_type ON promotions (discount_type);
`

// EnsureSchema creates the promotions table and its indexes if they do
// not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
