package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
	"github.com/purushotam56/hatiri-storefront-service/internal/product"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

type orderUseCase struct {
	orders   order.Repository
	products product.Repository
	ledger   stock.UseCase
	tx       order.TxManager
	locker   order.Locker
	events   order.Publisher
	logger   logger.ZapLogger
}

func NewOrderUseCase(
	orders order.Repository,
	products product.Repository,
	ledger stock.UseCase,
	tx order.TxManager,
	locker order.Locker,
	events order.Publisher,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		orders:   orders,
		products: products,
		ledger:   ledger,
		tx:       tx,
		locker:   locker,
		events:   events,
		logger:   log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.Validation("order must contain at least one item")
	}

	productIDs := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.Validation("item quantity for product %s must be positive", item.ProductID)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := uc.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[string]model.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	now := time.Now()
	o := &model.Order{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Status:        model.OrderStatusPending,
	}
	if input.DeliveryAddress != "" {
		addr := input.DeliveryAddress
		o.DeliveryAddress = &addr
	}

	var total float64
	for _, item := range input.Items {
		p, ok := productsByID[item.ProductID]
		if !ok {
			return nil, apperrors.NotFound("product %s not found", item.ProductID)
		}
		if !p.IsActive {
			return nil, apperrors.Validation("product %s is not available", p.Name)
		}

		unitPrice := p.Price
		if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
			unitPrice = *p.DiscountPrice
		}
		total += unitPrice * float64(item.Quantity)

		o.Items = append(o.Items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
	}
	o.TotalAmount = total

	// Stock is not touched here: the debit happens when the order reaches
	// confirmed, through the same reconciliation path as every other
	// transition.
	err = uc.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return uc.orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
		zap.Int("items", len(o.Items)),
	)
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	return uc.orders.FindAll(ctx, filters)
}

func (uc *orderUseCase) SetStatus(ctx context.Context, orderID string, next model.OrderStatus) (*dto.SetStatusResult, error) {
	lockKey := "lock:order-status:" + orderID
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire order status lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperrors.Conflict("order %s is being updated by another request", orderID)
	}
	defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)

	var result *dto.SetStatusResult
	var prevStatus model.OrderStatus
	err := uc.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := uc.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperrors.NotFound("order %s not found", orderID)
		}

		// HTTP callers carry an organisation; internal paths (the delivery
		// listener) do not and are trusted.
		if orgID := auth.OrgID(ctx); orgID != "" {
			owned, err := uc.orders.OwnedByOrg(ctx, orderID, orgID)
			if err != nil {
				return err
			}
			if !owned {
				return apperrors.Authorization("organisation does not own any item in order %s", orderID)
			}
		}

		prev := o.Status
		prevStatus = prev
		if err := order.ValidateTransition(prev, next); err != nil {
			return err
		}

		direction := stock.AdjustmentDirection(o, next)
		adjustments, err := uc.ledger.AdjustForStatusChange(ctx, o, prev, next)
		if err != nil {
			return err
		}

		now := time.Now()
		switch {
		case direction < 0:
			o.StockCommittedAt = &now
		case direction > 0:
			o.StockCommittedAt = nil
		}
		o.Status = next
		o.UpdatedAt = now

		if err := uc.orders.UpdateStatus(ctx, o); err != nil {
			return err
		}

		result = &dto.SetStatusResult{Order: o, Adjustments: adjustments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publishStatusChanged(ctx, prevStatus, result)
	return result, nil
}

func (uc *orderUseCase) publishStatusChanged(ctx context.Context, prev model.OrderStatus, result *dto.SetStatusResult) {
	if uc.events == nil {
		return
	}

	event := dto.OrderStatusChangedEvent{
		EventID:   uuid.New().String(),
		EventType: dto.EventOrderStatusChanged,
		Payload: dto.OrderStatusChangedPayload{
			OrderID:        result.Order.ID,
			PreviousStatus: string(prev),
			NewStatus:      string(result.Order.Status),
			Adjustments:    result.Adjustments,
		},
		Timestamp: time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal order status event", zap.Error(err))
		return
	}
	if err := uc.events.Publish(ctx, []byte(result.Order.ID), value); err != nil {
		// The transition is already committed; event delivery is best effort.
		uc.logger.Error("failed to publish order status event",
			zap.String("order_id", result.Order.ID),
			zap.Error(err),
		)
	}
}
