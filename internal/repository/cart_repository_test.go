package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laburen/sales-agent-mcp/internal/domain"
	"github.com/laburen/sales-agent-mcp/internal/port"
	"github.com/laburen/sales-agent-mcp/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type cartRepositorySuite struct {
	suite.Suite

	repo port.CartRepository
	pool *pgxpool.Pool
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo, err = repository.NewCart(suite.pool)
	suite.NoError(err)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *cartRepositorySuite) SetupTest() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE carts, products CASCADE")
	suite.NoError(err)
}

func (suite *cartRepositorySuite) TestGetOrCreate() {
	t := suite.T()
	ctx := t.Context()

	conversationID := gofakeit.UUID()

	created, err := suite.repo.GetOrCreate(ctx, conversationID)
	require.NoError(t, err)
	assert.Equal(t, conversationID, created.ConversationID)
	assert.NotEqual(t, uuid.Nil, created.ID)

	// idempotent: second call returns the same cart
	again, err := suite.repo.GetOrCreate(ctx, conversationID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = suite.repo.GetOrCreate(ctx, "")
	require.EqualError(t, err, "conversationID is empty")
}

func (suite *cartRepositorySuite) TestGetOrCreate_Concurrent() {
	t := suite.T()
	ctx := t.Context()

	conversationID := gofakeit.UUID()

	const n = 50
	ids := make(map[uuid.UUID]struct{})
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			cart, err := suite.repo.GetOrCreate(gctx, conversationID)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ids, 1, "concurrent first-time calls must create exactly one cart")
}

func (suite *cartRepositorySuite) TestGetByConversation() {
	t := suite.T()
	ctx := t.Context()

	conversationID := gofakeit.UUID()

	_, err := suite.repo.GetByConversation(ctx, conversationID)
	var notFound domain.CartNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, conversationID, notFound.ConversationID)

	created, err := suite.repo.GetOrCreate(ctx, conversationID)
	require.NoError(t, err)

	got, err := suite.repo.GetByConversation(ctx, conversationID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func (suite *cartRepositorySuite) TestAddItemQuantity() {
	t := suite.T()
	ctx := t.Context()

	product := randomProduct()
	product.Stock = 10
	insertProduct(t, suite.pool, product)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	// first add creates the item
	qty, err := suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 3, product.Stock)
	require.NoError(t, err)
	assert.Equal(t, int32(3), qty)

	// second add merges by summing
	qty, err = suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 4, product.Stock)
	require.NoError(t, err)
	assert.Equal(t, int32(7), qty)

	// exceeding the cap leaves the row untouched
	_, err = suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 4, product.Stock)
	require.ErrorIs(t, err, port.ErrQuantityCapExceeded)

	lines, err := suite.repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(7), lines[0].Quantity)

	// delta above the cap is rejected outright
	_, err = suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 11, product.Stock)
	require.ErrorIs(t, err, port.ErrQuantityCapExceeded)
}

func (suite *cartRepositorySuite) TestAddItemQuantity_Concurrent() {
	t := suite.T()
	ctx := t.Context()

	product := randomProduct()
	product.Stock = 100
	insertProduct(t, suite.pool, product)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	const n = 50
	g, gctx := errgroup.WithContext(ctx)
	for range n {
		g.Go(func() error {
			_, err := suite.repo.AddItemQuantity(gctx, cart.ID, product.ID, 1, product.Stock)
			return err
		})
	}
	require.NoError(t, g.Wait())

	lines, err := suite.repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(n), lines[0].Quantity, "no add may be lost")
}

func (suite *cartRepositorySuite) TestAddItemQuantity_ConcurrentCapped() {
	t := suite.T()
	ctx := t.Context()

	product := randomProduct()
	product.Stock = 30
	insertProduct(t, suite.pool, product)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	// 50 concurrent adds of 1 against a cap of 30: some must fail, and the
	// final quantity must sit exactly at the cap.
	var g errgroup.Group
	for range 50 {
		g.Go(func() error {
			_, err := suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 1, product.Stock)
			if err != nil && !errors.Is(err, port.ErrQuantityCapExceeded) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	lines, err := suite.repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(30), lines[0].Quantity)
}

func (suite *cartRepositorySuite) TestSetItemQuantity() {
	t := suite.T()
	ctx := t.Context()

	product := randomProduct()
	insertProduct(t, suite.pool, product)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	// creates the item when absent
	require.NoError(t, suite.repo.SetItemQuantity(ctx, cart.ID, product.ID, 5))

	// replaces, not merges
	require.NoError(t, suite.repo.SetItemQuantity(ctx, cart.ID, product.ID, 2))

	lines, err := suite.repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int32(2), lines[0].Quantity)

	err = suite.repo.SetItemQuantity(ctx, cart.ID, product.ID, 0)
	require.EqualError(t, err, "quantity must be positive")
}

func (suite *cartRepositorySuite) TestRemoveItem() {
	t := suite.T()
	ctx := t.Context()

	product := randomProduct()
	insertProduct(t, suite.pool, product)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	_, err = suite.repo.AddItemQuantity(ctx, cart.ID, product.ID, 2, product.Stock)
	require.NoError(t, err)

	deleted, err := suite.repo.RemoveItem(ctx, cart.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// removing an absent item is not an error
	deleted, err = suite.repo.RemoveItem(ctx, cart.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func (suite *cartRepositorySuite) TestListItems() {
	t := suite.T()
	ctx := t.Context()

	first := randomProduct()
	first.Name = "Aubergine"
	second := randomProduct()
	second.Name = "Zucchini"
	insertProduct(t, suite.pool, first)
	insertProduct(t, suite.pool, second)

	cart, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	_, err = suite.repo.AddItemQuantity(ctx, cart.ID, second.ID, 1, second.Stock)
	require.NoError(t, err)
	_, err = suite.repo.AddItemQuantity(ctx, cart.ID, first.ID, 2, first.Stock)
	require.NoError(t, err)

	lines, err := suite.repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// ordered by product name
	assertProduct(t, first, lines[0].Product)
	assert.Equal(t, int32(2), lines[0].Quantity)
	assertProduct(t, second, lines[1].Product)
	assert.Equal(t, int32(1), lines[1].Quantity)

	// another cart sees nothing
	other, err := suite.repo.GetOrCreate(ctx, gofakeit.UUID())
	require.NoError(t, err)

	otherLines, err := suite.repo.ListItems(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherLines)
}
