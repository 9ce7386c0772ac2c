package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printforgeapp/printforge/internal/pricing"
)

const cartItemsSchema = `
CREATE TABLE IF NOT EXISTS cart_items (
	cart_id                TEXT        NOT NULL,
	line_id                TEXT        NOT NULL,
	product_id             TEXT        NOT NULL,
	variant_id             BIGINT      NOT NULL,
	name                   TEXT        NOT NULL,
	unit_price_minor_units BIGINT      NOT NULL,
	quantity               INT         NOT NULL,
	image_url              TEXT        NOT NULL DEFAULT '',
	options                JSONB       NOT NULL DEFAULT '{}',
	customization          JSONB       NOT NULL DEFAULT '{}',
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (cart_id, line_id)
)`

// PostgresStore persists carts in Postgres. The upsert merges quantities on
// the (cart_id, line_id) key, capped at MaxQuantity; display prices are not
// stored, only minor units.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool is required")
	}
	if _, err := pool.Exec(ctx, cartItemsSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure cart_items table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Add(ctx context.Context, cartID string, item LineItem) (LineItem, error) {
	optionsJSON, err := json.Marshal(item.Options)
	if err != nil {
		return LineItem{}, err
	}
	customizationJSON, err := json.Marshal(item.Customization)
	if err != nil {
		return LineItem{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO cart_items (
			cart_id, line_id, product_id, variant_id, name,
			unit_price_minor_units, quantity, image_url, options, customization
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (cart_id, line_id) DO UPDATE SET
			quantity   = LEAST(cart_items.quantity + EXCLUDED.quantity, $11),
			updated_at = now()
		RETURNING quantity`,
		cartID, item.ID, item.ProductID, item.VariantID, item.Name,
		item.UnitPriceMinorUnits, item.Quantity, item.ImageURL, optionsJSON, customizationJSON,
		MaxQuantity,
	)

	var quantity int64
	if err := row.Scan(&quantity); err != nil {
		return LineItem{}, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	item.Quantity = quantity
	return item, nil
}

func (s *PostgresStore) List(ctx context.Context, cartID string) ([]LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT line_id, product_id, variant_id, name,
		       unit_price_minor_units, quantity, image_url, options, customization
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY line_id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var (
			item              LineItem
			optionsJSON       []byte
			customizationJSON []byte
		)
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.VariantID, &item.Name,
			&item.UnitPriceMinorUnits, &item.Quantity, &item.ImageURL,
			&optionsJSON, &customizationJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if err := json.Unmarshal(optionsJSON, &item.Options); err != nil {
			return nil, fmt.Errorf("failed to decode cart item options: %w", err)
		}
		if len(customizationJSON) > 0 {
			if err := json.Unmarshal(customizationJSON, &item.Customization); err != nil {
				return nil, fmt.Errorf("failed to decode cart item customization: %w", err)
			}
		}
		if len(item.Customization) == 0 {
			item.Customization = nil
		}
		// Only minor units are stored; the display form is derived.
		item.UnitPriceDisplay = pricing.Display(item.UnitPriceMinorUnits)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) Remove(ctx context.Context, cartID, lineID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND line_id = $2`,
		cartID, lineID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, cartID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the app.
func (s *PostgresStore) Close() error {
	return nil
}
