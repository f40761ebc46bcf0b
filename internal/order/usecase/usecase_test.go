package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order"
	orderdto "github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
	proddto "github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
	stockdto "github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
	stockUCPkg "github.com/purushotam56/hatiri-storefront-service/internal/stock/usecase"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

// --- in-memory fakes ---

type memStore struct {
	orders   map[string]*model.Order
	products map[string]*model.Product
	groups   map[string]*model.ProductGroup

	movements []model.StockMovement
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[string]*model.Order{},
		products: map[string]*model.Product{},
		groups:   map[string]*model.ProductGroup{},
	}
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(ctx context.Context, o *model.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, o *model.Order) error {
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) FindAll(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error) {
	out := []model.Order{}
	for _, o := range r.s.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memOrderRepo) OwnedByOrg(ctx context.Context, orderID, orgID string) (bool, error) {
	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, item := range o.Items {
		if p, ok := r.s.products[item.ProductID]; ok && p.OrgID == orgID {
			return true, nil
		}
	}
	return false, nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) CreateGroup(ctx context.Context, g *model.ProductGroup) error {
	cp := *g
	r.s.groups[g.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateGroup(ctx context.Context, g *model.ProductGroup) error {
	cp := *g
	r.s.groups[g.ID] = &cp
	return nil
}

func (r *memProductRepo) GetGroupByID(ctx context.Context, id string) (*model.ProductGroup, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *memProductRepo) FindGroupsByIDs(ctx context.Context, ids []string) ([]model.ProductGroup, error) {
	out := []model.ProductGroup{}
	for _, id := range ids {
		if g, ok := r.s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByGroup(ctx context.Context, groupID string) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range r.s.products {
		if p.GroupID != nil && *p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Create(ctx context.Context, p *model.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Update(ctx context.Context, p *model.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAll(ctx context.Context, filters *proddto.ProductFilters) ([]model.Product, int, error) {
	out := []model.Product{}
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memProductRepo) Delete(ctx context.Context, id string) error {
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) IsSKUUnique(ctx context.Context, orgID, sku, excludeID string) (bool, error) {
	for _, p := range r.s.products {
		if p.OrgID == orgID && p.SKU == sku && p.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) GetProductsForUpdate(ctx context.Context, ids []string) ([]model.Product, error) {
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memStockRepo) GetGroupsForUpdate(ctx context.Context, ids []string) ([]model.ProductGroup, error) {
	out := []model.ProductGroup{}
	for _, id := range ids {
		if g, ok := r.s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memStockRepo) ApplyProductDelta(ctx context.Context, productID string, delta int64) (int64, int64, error) {
	p, ok := r.s.products[productID]
	if !ok || p.Stock+delta < 0 {
		return 0, 0, apperrors.InsufficientStock("insufficient stock for product %s", productID)
	}
	before := p.Stock
	p.Stock += delta
	return before, p.Stock, nil
}

func (r *memStockRepo) ApplyGroupDelta(ctx context.Context, groupID string, delta int64) (int64, int64, error) {
	g, ok := r.s.groups[groupID]
	if !ok || g.BaseStock+delta < 0 {
		return 0, 0, apperrors.InsufficientStock("insufficient shared stock for product group %s", groupID)
	}
	before := g.BaseStock
	g.BaseStock += delta
	return before, g.BaseStock, nil
}

func (r *memStockRepo) LogMovement(ctx context.Context, m *model.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memStockRepo) ListMovements(ctx context.Context, filters *stockdto.MovementFilters) ([]model.StockMovement, int, error) {
	return r.s.movements, len(r.s.movements), nil
}

// fakeTx runs the function directly; the memStore mutates in place, so a
// failed "transaction" does not roll back. Tests that need atomicity assert
// on observable state only after success or before any mutation.
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLocker struct {
	denied bool
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return !l.denied, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key, value string) error { return nil }

type capturingPublisher struct {
	keys   []string
	values [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, key, value []byte) error {
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

// --- fixtures ---

type fixture struct {
	store  *memStore
	uc     order.UseCase
	events *capturingPublisher
	locker *fakeLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	log := logger.NewNop()
	stockUC := stockUCPkg.NewStockUseCase(&memStockRepo{s: store}, log)
	events := &capturingPublisher{}
	locker := &fakeLocker{}
	uc := NewOrderUseCase(
		&memOrderRepo{s: store},
		&memProductRepo{s: store},
		stockUC,
		fakeTx{},
		locker,
		events,
		log,
	)
	return &fixture{store: store, uc: uc, events: events, locker: locker}
}

func (f *fixture) addMergedGroup(id string, baseStock int64) {
	f.store.groups[id] = &model.ProductGroup{
		BaseModel:      model.BaseModel{ID: id},
		OrgID:          "org-1",
		BaseStock:      baseStock,
		Unit:           model.UnitKg,
		StockMergeType: model.StockMergeMerged,
	}
}

func (f *fixture) addVariant(id, groupID string, stock int64, price float64) {
	gid := groupID
	f.store.products[id] = &model.Product{
		BaseModel: model.BaseModel{ID: id},
		OrgID:     "org-1",
		GroupID:   &gid,
		Name:      "Variant " + id,
		Price:     price,
		Stock:     stock,
		Unit:      model.UnitKg,
		Quantity:  1,
		IsActive:  true,
	}
}

func (f *fixture) addOrder(id string, status model.OrderStatus, items ...model.OrderItem) {
	f.store.orders[id] = &model.Order{
		BaseModel: model.BaseModel{ID: id},
		Status:    status,
		Items:     items,
	}
}

// --- tests ---

func TestCreateOrderStartsPendingWithoutTouchingStock(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)

	o, err := f.uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		CustomerName:  "Asha",
		CustomerPhone: "9800000001",
		Items:         []orderdto.CreateOrderItemInput{{ProductID: "v1", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Nil(t, o.StockCommittedAt)
	assert.Equal(t, float64(150), o.TotalAmount)
	assert.Equal(t, int64(100), f.store.groups["g1"].BaseStock, "stock must not move at checkout")
}

func TestCreateOrderUsesDiscountPrice(t *testing.T) {
	f := newFixture(t)
	discount := 40.0
	f.store.products["p1"] = &model.Product{
		BaseModel:     model.BaseModel{ID: "p1"},
		OrgID:         "org-1",
		Price:         50,
		DiscountPrice: &discount,
		Unit:          model.UnitPiece,
		IsActive:      true,
	}

	o, err := f.uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		CustomerName:  "Asha",
		CustomerPhone: "9800000001",
		Items:         []orderdto.CreateOrderItemInput{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(80), o.TotalAmount)
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	f.store.products["p1"] = &model.Product{
		BaseModel: model.BaseModel{ID: "p1"},
		OrgID:     "org-1",
		Price:     50,
		IsActive:  false,
	}

	_, err := f.uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		CustomerName:  "Asha",
		CustomerPhone: "9800000001",
		Items:         []orderdto.CreateOrderItemInput{{ProductID: "p1", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSetStatusConfirmDebitsMergedPoolOnce(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addVariant("v2", "g1", 0, 90)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 3},
		model.OrderItem{ID: "i2", OrderID: "o1", ProductID: "v2", Quantity: 2},
	)

	result, err := f.uc.SetStatus(context.Background(), "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusConfirmed, result.Order.Status)
	assert.NotNil(t, result.Order.StockCommittedAt)
	require.Len(t, result.Adjustments, 1, "both variants draw from one shared pool")
	assert.Equal(t, int64(100), result.Adjustments[0].PreviousStock)
	assert.Equal(t, int64(95), result.Adjustments[0].NewStock)
	assert.Equal(t, int64(95), f.store.groups["g1"].BaseStock)

	// Per-variant counters stay untouched under the merged policy.
	assert.Equal(t, int64(0), f.store.products["v1"].Stock)
	assert.Equal(t, int64(0), f.store.products["v2"].Stock)

	require.Len(t, f.store.movements, 1)
	assert.Equal(t, model.MovementOrderCommit, f.store.movements[0].MovementType)
	assert.Equal(t, int64(-5), f.store.movements[0].QuantityChange)
}

func TestSetStatusCancelRestoresCommittedStock(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addVariant("v2", "g1", 0, 90)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 3},
		model.OrderItem{ID: "i2", OrderID: "o1", ProductID: "v2", Quantity: 2},
	)

	ctx := context.Background()
	_, err := f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = f.uc.SetStatus(ctx, "o1", model.OrderStatusPreparing)
	require.NoError(t, err)

	result, err := f.uc.SetStatus(ctx, "o1", model.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, result.Order.Status)
	assert.Nil(t, result.Order.StockCommittedAt)
	assert.Equal(t, int64(100), f.store.groups["g1"].BaseStock, "cancel must restore the debit exactly")

	require.Len(t, f.store.movements, 2)
	assert.Equal(t, model.MovementOrderRelease, f.store.movements[1].MovementType)
	assert.Equal(t, int64(5), f.store.movements[1].QuantityChange)
}

func TestSetStatusCancelBeforeConfirmLeavesStockAlone(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 3},
	)

	result, err := f.uc.SetStatus(context.Background(), "o1", model.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Empty(t, result.Adjustments)
	assert.Equal(t, int64(100), f.store.groups["g1"].BaseStock)
	assert.Empty(t, f.store.movements)
}

func TestSetStatusForwardStepsAfterConfirmMoveNoStock(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 5},
	)

	ctx := context.Background()
	_, err := f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(95), f.store.groups["g1"].BaseStock)

	for _, next := range []model.OrderStatus{
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
	} {
		result, err := f.uc.SetStatus(ctx, "o1", next)
		require.NoError(t, err)
		assert.Empty(t, result.Adjustments, "transition to %s must not move stock", next)
	}
	assert.Equal(t, int64(95), f.store.groups["g1"].BaseStock)
	assert.Len(t, f.store.movements, 1, "only the confirm debit is recorded")
}

func TestSetStatusInsufficientIndependentStock(t *testing.T) {
	f := newFixture(t)
	f.store.groups["g1"] = &model.ProductGroup{
		BaseModel:      model.BaseModel{ID: "g1"},
		OrgID:          "org-1",
		Unit:           model.UnitKg,
		StockMergeType: model.StockMergeIndependent,
	}
	f.addVariant("v1", "g1", 2, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 3},
	)

	_, err := f.uc.SetStatus(context.Background(), "o1", model.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// The order stays where it was and nothing is published.
	assert.Equal(t, model.OrderStatusPending, f.store.orders["o1"].Status)
	assert.Empty(t, f.events.values)
}

func TestSetStatusRejectsReplayedTransition(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 5},
	)

	ctx := context.Background()
	_, err := f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	assert.Equal(t, int64(95), f.store.groups["g1"].BaseStock, "replay must not debit twice")
}

func TestSetStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SetStatus(context.Background(), "missing", model.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSetStatusEnforcesOrgOwnership(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 1},
	)

	ctx := auth.WithCaller(context.Background(), &auth.Caller{UserID: "u1", OrgID: "org-2", OrgCode: "OTH"})
	_, err := f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
	assert.Equal(t, int64(100), f.store.groups["g1"].BaseStock)

	ctx = auth.WithCaller(context.Background(), &auth.Caller{UserID: "u1", OrgID: "org-1", OrgCode: "ORG"})
	_, err = f.uc.SetStatus(ctx, "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)
}

func TestSetStatusConflictWhenLockHeld(t *testing.T) {
	f := newFixture(t)
	f.addOrder("o1", model.OrderStatusPending)
	f.locker.denied = true

	_, err := f.uc.SetStatus(context.Background(), "o1", model.OrderStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestSetStatusPublishesEvent(t *testing.T) {
	f := newFixture(t)
	f.addMergedGroup("g1", 100)
	f.addVariant("v1", "g1", 0, 50)
	f.addOrder("o1", model.OrderStatusPending,
		model.OrderItem{ID: "i1", OrderID: "o1", ProductID: "v1", Quantity: 2},
	)

	_, err := f.uc.SetStatus(context.Background(), "o1", model.OrderStatusConfirmed)
	require.NoError(t, err)

	require.Len(t, f.events.values, 1)
	assert.Equal(t, "o1", f.events.keys[0], "events are keyed by order for per-order ordering")
	assert.Contains(t, string(f.events.values[0]), `"previous_status":"pending"`)
	assert.Contains(t, string(f.events.values[0]), `"new_status":"confirmed"`)
}
