package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const productColumns = `id, name, COALESCE(description, ''), price_amount::text, price_currency, stock, created_at`

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) (port.ProductRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &productRepository{pool: pool}, nil
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ProductNotFoundError{ProductID: productID}
		}
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return product, nil
}

func (r *productRepository) SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	if filter.MinPrice != nil {
		args = append(args, filter.MinPrice.String())
		query += fmt.Sprintf(" AND price_amount >= $%d", len(args))
	}

	if filter.MaxPrice != nil {
		args = append(args, filter.MaxPrice.String())
		query += fmt.Sprintf(" AND price_amount <= $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		product       domain.Product
		priceAmount   string
		priceCurrency string
		createdAt     time.Time
	)

	err := row.Scan(&product.ID, &product.Name, &product.Description,
		&priceAmount, &priceCurrency, &product.Stock, &createdAt)
	if err != nil {
		return domain.Product{}, err
	}

	price, err := mapPriceToMoney(priceAmount, priceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapPriceToMoney: %w", err)
	}

	product.Price = price
	product.CreatedAt = createdAt
	return product, nil
}

func mapPriceToMoney(amount, currencyCode string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}
