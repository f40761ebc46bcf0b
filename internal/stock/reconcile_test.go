package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
)

func mergedGroup(id string) model.ProductGroup {
	return model.ProductGroup{
		BaseModel:      model.BaseModel{ID: id},
		OrgID:          "org-1",
		BaseStock:      100,
		Unit:           model.UnitKg,
		StockMergeType: model.StockMergeMerged,
	}
}

func variant(id, groupID string, unit model.Unit) model.Product {
	return model.Product{
		BaseModel: model.BaseModel{ID: id},
		OrgID:     "org-1",
		GroupID:   &groupID,
		Unit:      unit,
	}
}

func TestComputeCommitmentsMergedGroupSummedOnce(t *testing.T) {
	products := map[string]model.Product{
		"v1": variant("v1", "g1", model.UnitKg),
		"v2": variant("v2", "g1", model.UnitGm),
	}
	groups := map[string]model.ProductGroup{"g1": mergedGroup("g1")}
	items := []model.OrderItem{
		{ProductID: "v1", Quantity: 3},
		{ProductID: "v2", Quantity: 2},
	}

	commitments, err := ComputeCommitments(items, products, groups)
	require.NoError(t, err)
	require.Len(t, commitments, 1)
	require.NotNil(t, commitments[0].GroupID)
	assert.Equal(t, "g1", *commitments[0].GroupID)
	assert.Equal(t, int64(5), commitments[0].Quantity)
	assert.Equal(t, "org-1", commitments[0].OrgID)
}

func TestComputeCommitmentsIndependentPerProduct(t *testing.T) {
	g := mergedGroup("g1")
	g.StockMergeType = model.StockMergeIndependent
	products := map[string]model.Product{
		"v1": variant("v1", "g1", model.UnitKg),
		"v2": variant("v2", "g1", model.UnitGm),
	}
	groups := map[string]model.ProductGroup{"g1": g}
	items := []model.OrderItem{
		{ProductID: "v1", Quantity: 3},
		{ProductID: "v2", Quantity: 2},
	}

	commitments, err := ComputeCommitments(items, products, groups)
	require.NoError(t, err)
	require.Len(t, commitments, 2)
	for _, c := range commitments {
		assert.Nil(t, c.GroupID)
	}
}

func TestComputeCommitmentsStandalone(t *testing.T) {
	products := map[string]model.Product{
		"p1": {BaseModel: model.BaseModel{ID: "p1"}, OrgID: "org-1", Unit: model.UnitPiece},
	}
	items := []model.OrderItem{
		{ProductID: "p1", Quantity: 4},
		{ProductID: "p1", Quantity: 1},
	}

	commitments, err := ComputeCommitments(items, products, nil)
	require.NoError(t, err)
	require.Len(t, commitments, 1)
	assert.Equal(t, "p1", commitments[0].ProductID)
	assert.Equal(t, int64(5), commitments[0].Quantity)
}

func TestComputeCommitmentsMixedOrder(t *testing.T) {
	products := map[string]model.Product{
		"v1": variant("v1", "g1", model.UnitKg),
		"v2": variant("v2", "g1", model.UnitKg),
		"p1": {BaseModel: model.BaseModel{ID: "p1"}, OrgID: "org-1", Unit: model.UnitPiece},
	}
	groups := map[string]model.ProductGroup{"g1": mergedGroup("g1")}
	items := []model.OrderItem{
		{ProductID: "v1", Quantity: 2},
		{ProductID: "p1", Quantity: 1},
		{ProductID: "v2", Quantity: 3},
	}

	commitments, err := ComputeCommitments(items, products, groups)
	require.NoError(t, err)
	require.Len(t, commitments, 2)

	byKey := map[string]Commitment{}
	for _, c := range commitments {
		if c.GroupID != nil {
			byKey[*c.GroupID] = c
		} else {
			byKey[c.ProductID] = c
		}
	}
	assert.Equal(t, int64(5), byKey["g1"].Quantity)
	assert.Equal(t, int64(1), byKey["p1"].Quantity)
}

func TestComputeCommitmentsErrors(t *testing.T) {
	groups := map[string]model.ProductGroup{"g1": mergedGroup("g1")}

	t.Run("unknown product", func(t *testing.T) {
		_, err := ComputeCommitments(
			[]model.OrderItem{{ProductID: "missing", Quantity: 1}},
			map[string]model.Product{}, groups,
		)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("unknown group", func(t *testing.T) {
		products := map[string]model.Product{"v1": variant("v1", "g2", model.UnitKg)}
		_, err := ComputeCommitments(
			[]model.OrderItem{{ProductID: "v1", Quantity: 1}},
			products, groups,
		)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		products := map[string]model.Product{"v1": variant("v1", "g1", model.UnitKg)}
		_, err := ComputeCommitments(
			[]model.OrderItem{{ProductID: "v1", Quantity: 0}},
			products, groups,
		)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("incompatible units", func(t *testing.T) {
		products := map[string]model.Product{"v1": variant("v1", "g1", model.UnitMl)}
		_, err := ComputeCommitments(
			[]model.OrderItem{{ProductID: "v1", Quantity: 1}},
			products, groups,
		)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestAdjustmentDirection(t *testing.T) {
	now := time.Now()

	t.Run("first confirm debits", func(t *testing.T) {
		o := &model.Order{Status: model.OrderStatusPending}
		assert.Equal(t, int64(-1), AdjustmentDirection(o, model.OrderStatusConfirmed))
	})

	t.Run("replayed confirm does nothing", func(t *testing.T) {
		o := &model.Order{Status: model.OrderStatusPending, StockCommittedAt: &now}
		assert.Equal(t, int64(0), AdjustmentDirection(o, model.OrderStatusConfirmed))
	})

	t.Run("cancel of committed order credits", func(t *testing.T) {
		o := &model.Order{Status: model.OrderStatusPreparing, StockCommittedAt: &now}
		assert.Equal(t, int64(1), AdjustmentDirection(o, model.OrderStatusCancelled))
	})

	t.Run("cancel of uncommitted order does nothing", func(t *testing.T) {
		o := &model.Order{Status: model.OrderStatusPending}
		assert.Equal(t, int64(0), AdjustmentDirection(o, model.OrderStatusCancelled))
	})

	t.Run("plain forward steps do nothing", func(t *testing.T) {
		o := &model.Order{Status: model.OrderStatusConfirmed, StockCommittedAt: &now}
		assert.Equal(t, int64(0), AdjustmentDirection(o, model.OrderStatusPreparing))
		assert.Equal(t, int64(0), AdjustmentDirection(o, model.OrderStatusDelivered))
	})
}
