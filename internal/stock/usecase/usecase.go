package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

type stockUseCase struct {
	repo   stock.Repository
	logger logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *stockUseCase) AdjustForStatusChange(ctx context.Context, order *model.Order, from, to model.OrderStatus) ([]model.StockAdjustment, error) {
	direction := stock.AdjustmentDirection(order, to)
	if direction == 0 {
		return []model.StockAdjustment{}, nil
	}

	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := uc.repo.GetProductsForUpdate(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[string]model.Product, len(products))
	groupIDs := make([]string, 0)
	for _, p := range products {
		productsByID[p.ID] = p
		if !p.IsStandalone() {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	groupsByID := map[string]model.ProductGroup{}
	if len(groupIDs) > 0 {
		groups, err := uc.repo.GetGroupsForUpdate(ctx, groupIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			groupsByID[g.ID] = g
		}
	}

	commitments, err := stock.ComputeCommitments(order.Items, productsByID, groupsByID)
	if err != nil {
		return nil, err
	}

	movementType := model.MovementOrderCommit
	if direction > 0 {
		movementType = model.MovementOrderRelease
	}

	adjustments := make([]model.StockAdjustment, 0, len(commitments))
	for _, c := range commitments {
		delta := direction * c.Quantity

		var before, after int64
		if c.GroupID != nil {
			before, after, err = uc.repo.ApplyGroupDelta(ctx, *c.GroupID, delta)
		} else {
			before, after, err = uc.repo.ApplyProductDelta(ctx, c.ProductID, delta)
		}
		if err != nil {
			return nil, err
		}

		refType := "order"
		refID := order.ID
		movement := &model.StockMovement{
			ID:             uuid.New().String(),
			OrgID:          c.OrgID,
			MovementType:   movementType,
			QuantityChange: delta,
			QuantityBefore: before,
			QuantityAfter:  after,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			CreatedAt:      time.Now(),
		}
		if c.GroupID != nil {
			movement.GroupID = c.GroupID
		} else {
			pid := c.ProductID
			movement.ProductID = &pid
		}
		if err := uc.repo.LogMovement(ctx, movement); err != nil {
			return nil, err
		}

		adjustments = append(adjustments, model.StockAdjustment{
			ProductID:     c.ProductID,
			GroupID:       c.GroupID,
			PreviousStock: before,
			NewStock:      after,
			Quantity:      c.Quantity,
		})
	}

	uc.logger.Info("applied stock adjustments",
		zap.String("order_id", order.ID),
		zap.String("transition", string(from)+" -> "+string(to)),
		zap.Int("counters", len(adjustments)),
	)
	return adjustments, nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}
