package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../../migrations/01_catalog.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func insertProduct(t *testing.T, pool *pgxpool.Pool, product domain.Product) {
	t.Helper()

	_, err := pool.Exec(t.Context(),
		`INSERT INTO products (id, name, description, price_amount, price_currency, stock)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.Name, product.Description,
		product.Price.Amount.String(), product.Price.Currency.String(), product.Stock)
	require.NoError(t, err)
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:          uuid.MustParse(gofakeit.UUID()),
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(6),
		Price: domain.Money{
			// two decimal places to match the NUMERIC(12,2) column
			Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
			Currency: currency.EUR,
		},
		Stock:     int32(gofakeit.Number(1, 100)),
		CreatedAt: time.Now(),
	}
}
