package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/port"
)

type cartRepository struct {
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{pool: pool}, nil
}

func (r *cartRepository) GetByConversation(ctx context.Context, conversationID string) (domain.Cart, error) {
	if conversationID == "" {
		return domain.Cart{}, fmt.Errorf("conversationID is empty")
	}

	cart, err := getCartByConversation(ctx, r.pool, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Cart{}, domain.CartNotFoundError{ConversationID: conversationID}
		}
		return domain.Cart{}, fmt.Errorf("getCartByConversation: %w", err)
	}

	return cart, nil
}

// GetOrCreate relies on the unique constraint on conversation_id: the insert
// is a no-op when another caller won the race, and the follow-up select
// returns whichever row exists.
func (r *cartRepository) GetOrCreate(ctx context.Context, conversationID string) (domain.Cart, error) {
	if conversationID == "" {
		return domain.Cart{}, fmt.Errorf("conversationID is empty")
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) (domain.Cart, error) {
		_, err := tx.Exec(ctx,
			`INSERT INTO carts (id, conversation_id) VALUES ($1, $2)
			 ON CONFLICT (conversation_id) DO NOTHING`,
			uuid.New(), conversationID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("tx.Exec: %w", err)
		}

		cart, err := getCartByConversation(ctx, tx, conversationID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("getCartByConversation: %w", err)
		}

		return cart, nil
	})
}

// AddItemQuantity performs the increment and the cap check in a single
// conditional upsert, so concurrent adds for the same item cannot lose
// updates or overshoot maxQuantity.
func (r *cartRepository) AddItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta, maxQuantity int32) (int32, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive")
	}
	if delta > maxQuantity {
		return 0, port.ErrQuantityCapExceeded
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) (int32, error) {
		var quantity int32
		err := tx.QueryRow(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (cart_id, product_id) DO UPDATE
			 SET quantity = cart_items.quantity + EXCLUDED.quantity
			 WHERE cart_items.quantity + EXCLUDED.quantity <= $4
			 RETURNING quantity`,
			cartID, productID, delta, maxQuantity).Scan(&quantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, port.ErrQuantityCapExceeded
			}
			return 0, fmt.Errorf("tx.QueryRow: %w", err)
		}

		if err := touchCart(ctx, tx, cartID); err != nil {
			return 0, fmt.Errorf("touchCart: %w", err)
		}

		return quantity, nil
	})
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	_, err := withTx(ctx, r.pool, func(tx pgx.Tx) (struct{}, error) {
		_, err := tx.Exec(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (cart_id, product_id) DO UPDATE
			 SET quantity = EXCLUDED.quantity`,
			cartID, productID, quantity)
		if err != nil {
			return struct{}{}, fmt.Errorf("tx.Exec: %w", err)
		}

		if err := touchCart(ctx, tx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("touchCart: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	return withTx(ctx, r.pool, func(tx pgx.Tx) (bool, error) {
		tag, err := tx.Exec(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID)
		if err != nil {
			return false, fmt.Errorf("tx.Exec: %w", err)
		}

		if err := touchCart(ctx, tx, cartID); err != nil {
			return false, fmt.Errorf("touchCart: %w", err)
		}

		return tag.RowsAffected() > 0, nil
	})
}

// ListItems joins items with current product records. The FK on product_id
// keeps referenced products from being deleted, so the join never drops rows.
func (r *cartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, ''), p.price_amount::text, p.price_currency, p.stock, p.created_at,
		        ci.quantity
		 FROM cart_items ci
		 JOIN products p ON ci.product_id = p.id
		 WHERE ci.cart_id = $1
		 ORDER BY p.name ASC`, cartID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCartLine: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lines, nil
}

func getCartByConversation(ctx context.Context, q querier, conversationID string) (domain.Cart, error) {
	var cart domain.Cart
	err := q.QueryRow(ctx,
		`SELECT id, conversation_id, created_at, updated_at FROM carts WHERE conversation_id = $1`,
		conversationID).
		Scan(&cart.ID, &cart.ConversationID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return domain.Cart{}, err
	}

	return cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func scanCartLine(row pgx.Row) (domain.CartLine, error) {
	var (
		line          domain.CartLine
		priceAmount   string
		priceCurrency string
	)

	err := row.Scan(&line.Product.ID, &line.Product.Name, &line.Product.Description,
		&priceAmount, &priceCurrency, &line.Product.Stock, &line.Product.CreatedAt,
		&line.Quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	price, err := mapPriceToMoney(priceAmount, priceCurrency)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	line.Product.Price = price
	return line, nil
}

// querier is the subset of pgx query methods shared by pools and transactions.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
