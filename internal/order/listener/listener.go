package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/broker"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

// DeliveryListener applies status updates coming from the delivery service
// through the exact same usecase as the HTTP boundary, so the stock
// reconciliation rules hold no matter where a transition originates.
type DeliveryListener struct {
	consumer *broker.KafkaConsumer
	uc       order.UseCase
	logger   logger.ZapLogger
}

func NewDeliveryListener(consumer *broker.KafkaConsumer, uc order.UseCase, log logger.ZapLogger) *DeliveryListener {
	return &DeliveryListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *DeliveryListener) Start(ctx context.Context) {
	l.logger.Info("Starting delivery status listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping delivery status listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *DeliveryListener) processMessage(ctx context.Context, value []byte) {
	var event dto.DeliveryStatusChangedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal delivery event", zap.Error(err))
		return
	}

	if event.EventType != dto.EventDeliveryStatusChanged {
		return
	}

	l.logger.Info("Processing delivery status event",
		zap.String("order_id", event.Payload.OrderID),
		zap.String("status", event.Payload.Status),
	)

	_, err := l.uc.SetStatus(ctx, event.Payload.OrderID, model.OrderStatus(event.Payload.Status))
	if err != nil {
		// Out-of-order or replayed delivery updates show up as invalid
		// transitions; they are skipped, never partially applied.
		if apperrors.IsKind(err, apperrors.KindInvalidTransition) {
			l.logger.Warn("skipping delivery event with invalid transition",
				zap.String("order_id", event.Payload.OrderID),
				zap.String("status", event.Payload.Status),
				zap.Error(err),
			)
			return
		}
		l.logger.Error("failed to apply delivery status event",
			zap.String("order_id", event.Payload.OrderID),
			zap.Error(err),
		)
	}
}
