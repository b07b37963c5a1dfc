package api_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/adapters/docstore"
	"go.trai.ch/shelf/internal/api"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/shelf/internal/core/ports/mocks"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.uber.org/mock/gomock"
)

// countingTransport records how often each query was read, keyed by name and id.
type countingTransport struct {
	ports.Transport

	mu    sync.Mutex
	reads map[string]int
}

func (c *countingTransport) Query(ctx context.Context, name string, args domain.Args) (any, error) {
	c.mu.Lock()
	c.reads[name+" "+args.String("id")]++
	c.mu.Unlock()
	return c.Transport.Query(ctx, name, args)
}

func (c *countingTransport) count(name, id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[name+" "+id]
}

func fixture() *domain.Dataset {
	return &domain.Dataset{
		Products: []domain.Product{
			{ID: "p1", Name: "Desk Lamp", Price: decimal.RequireFromString("24.50"), Stock: 10, Active: true},
			{ID: "p2", Name: "Floor Lamp", Price: decimal.RequireFromString("89.00"), Stock: 1, Active: true},
			{ID: "p3", Name: "Shade", Price: decimal.RequireFromString("9.99"), Stock: 4, Active: true},
		},
		Users: []domain.User{{ID: "u1", Name: "Ada", Email: "ada@example.com"}},
		Orders: []domain.Order{
			{ID: "o1", UserID: "u1", Status: domain.OrderPending},
			{ID: "o2", UserID: "u1", Status: domain.OrderPending},
		},
	}
}

func setup(t *testing.T) (*tagcache.Layer, *countingTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := docstore.New(nil)
	require.NoError(t, store.Load(fixture()))
	transport := &countingTransport{Transport: store, reads: make(map[string]int)}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	layer := tagcache.New(transport, tracer, log)
	t.Cleanup(layer.Close)
	require.NoError(t, api.Register(layer))
	return layer, transport
}

func subscribe(t *testing.T, layer *tagcache.Layer, name string, args domain.Args) *tagcache.Subscription {
	t.Helper()
	sub, entry, err := layer.Subscribe(t.Context(), name, args)
	require.NoError(t, err)
	require.True(t, entry.IsSuccess(), "entry error: %v", entry.Err)
	t.Cleanup(sub.Unsubscribe)
	return sub
}

func TestRegister_CoversEveryStoreFunction(t *testing.T) {
	layer, _ := setup(t)
	queries, mutations := docstore.New(nil).Functions()

	eps := layer.Endpoints()
	assert.Equal(t, queries, eps.Queries)
	assert.Equal(t, mutations, eps.Mutations)
}

func TestRegister_Twice(t *testing.T) {
	layer, _ := setup(t)
	err := api.Register(layer)
	require.ErrorContains(t, err, domain.ErrDuplicateEndpoint.Error())
}

func TestOrderItemCreation_RefetchesOnlyThatOrder(t *testing.T) {
	layer, transport := setup(t)
	client := api.NewClient(layer)

	o1 := subscribe(t, layer, "orders:get", domain.Args{"id": "o1"})
	subscribe(t, layer, "orders:get", domain.Args{"id": "o2"})

	_, err := client.AddOrderItem(t.Context(), "o1", "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, transport.count("orders:get", "o1"))
	assert.Equal(t, 1, transport.count("orders:get", "o2"))

	entry, err := o1.Entry()
	require.NoError(t, err)
	detail, ok := entry.Data.(domain.OrderDetail)
	require.True(t, ok)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "49", detail.Order.Total.String())
	assert.False(t, entry.Stale)
}

func TestOrderWrites_RefreshProductStock(t *testing.T) {
	layer, transport := setup(t)
	client := api.NewClient(layer)
	product := subscribe(t, layer, "products:get", domain.Args{"id": "p1"})
	subscribe(t, layer, "orders:get", domain.Args{"id": "o2"})

	stock := func() int {
		t.Helper()
		entry, err := product.Entry()
		require.NoError(t, err)
		assert.False(t, entry.Stale)
		p, ok := entry.Data.(domain.Product)
		require.True(t, ok)
		return p.Stock
	}

	_, err := client.AddOrderItem(t.Context(), "o1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 8, stock(), "adding an item takes stock")

	_, err = client.SetOrderStatus(t.Context(), "o1", domain.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, stock(), "cancelling restocks")

	assert.Equal(t, 1, transport.count("orders:get", "o2"))
}

func TestProductRemoval_RefreshesAnalytics(t *testing.T) {
	layer, _ := setup(t)
	summary := subscribe(t, layer, "analytics:summary", domain.Args{})

	_, err := layer.InvokeMutation(t.Context(), "products:remove", domain.Args{"id": "p3"})
	require.NoError(t, err)

	entry, err := summary.Entry()
	require.NoError(t, err)
	assert.False(t, entry.Stale)
	got, ok := entry.Data.(domain.AnalyticsSummary)
	require.True(t, ok)
	assert.Equal(t, 2, got.Products)
}

func TestCategoryWideInvalidation_RefetchesEveryProductQuery(t *testing.T) {
	layer, transport := setup(t)

	subscribe(t, layer, "products:get", domain.Args{"id": "p1"})
	subscribe(t, layer, "products:get", domain.Args{"id": "p2"})
	subscribe(t, layer, "products:list", domain.Args{})
	subscribe(t, layer, "orders:get", domain.Args{"id": "o1"})

	require.NoError(t, layer.Invalidate(t.Context(), domain.Ref(domain.TagProducts)))

	assert.Equal(t, 2, transport.count("products:get", "p1"))
	assert.Equal(t, 2, transport.count("products:get", "p2"))
	assert.Equal(t, 2, transport.count("products:list", ""))
	assert.Equal(t, 1, transport.count("orders:get", "o1"))
}

func TestProductRemoval_RefreshesList(t *testing.T) {
	layer, _ := setup(t)
	client := api.NewClient(layer)
	list := subscribe(t, layer, "products:list", domain.Args{})

	_, err := layer.InvokeMutation(t.Context(), "products:remove", domain.Args{"id": "p3"})
	require.NoError(t, err)

	entry, err := list.Entry()
	require.NoError(t, err)
	products, ok := entry.Data.([]domain.Product)
	require.True(t, ok)
	assert.Len(t, products, 2)

	_, err = client.Product(t.Context(), "p3")
	require.ErrorContains(t, err, domain.ErrNotFound.Error())
}

func TestCartAddItem_InvalidatesOnError(t *testing.T) {
	layer, transport := setup(t)
	client := api.NewClient(layer)
	subscribe(t, layer, "products:get", domain.Args{"id": "p2"})

	_, err := client.AddToCart(t.Context(), "u1", "p2", 5)
	require.ErrorContains(t, err, domain.ErrOutOfStock.Error())

	assert.Equal(t, 2, transport.count("products:get", "p2"), "a rejected add refreshes the product")
}

func TestCheckout_RefreshesCartAndOrders(t *testing.T) {
	layer, _ := setup(t)
	client := api.NewClient(layer)

	_, err := client.AddToCart(t.Context(), "u1", "p1", 3)
	require.NoError(t, err)

	cart := subscribe(t, layer, "cart:get", domain.Args{"userId": "u1"})
	orders := subscribe(t, layer, "orders:listByUser", domain.Args{"userId": "u1"})

	order, err := client.Checkout(t.Context(), "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "73.5", order.Total.String())

	entry, err := cart.Entry()
	require.NoError(t, err)
	assert.Empty(t, entry.Data.(domain.Cart).Lines)

	entry, err = orders.Entry()
	require.NoError(t, err)
	assert.Len(t, entry.Data.([]domain.Order), 3)
}

// staticLayer settles every read with data.
type staticLayer struct {
	data any
	err  error
}

func (s staticLayer) Invoke(_ context.Context, name string, args domain.Args) (domain.CacheEntry, error) {
	if s.err != nil {
		return domain.CacheEntry{Query: name, Args: args, Status: domain.StatusError, Err: s.err}, nil
	}
	return domain.CacheEntry{Query: name, Args: args, Status: domain.StatusSuccess, Data: s.data}, nil
}

func (s staticLayer) InvokeMutation(context.Context, string, domain.Args) (any, error) {
	return s.data, s.err
}

func TestClient_UnexpectedResult(t *testing.T) {
	client := api.NewClient(staticLayer{data: "not a summary"})

	_, err := client.Summary(t.Context())
	require.ErrorContains(t, err, domain.ErrUnexpectedResult.Error())
	_, err = client.SetOrderStatus(t.Context(), "o1", domain.OrderPaid)
	require.ErrorContains(t, err, domain.ErrUnexpectedResult.Error())
}

func TestClient_EntryError(t *testing.T) {
	client := api.NewClient(staticLayer{err: errors.New("backend down")})

	_, err := client.Categories(t.Context())
	require.EqualError(t, err, "backend down")
}
