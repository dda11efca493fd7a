package api

import (
	"log/slog"

	"github.com/Apurer/go-gin-commerce/internal/app/stores"
	ordersevents "github.com/Apurer/go-gin-commerce/internal/domains/orders/adapters/events"
	ordersapp "github.com/Apurer/go-gin-commerce/internal/domains/orders/application"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
)

// NewOrderService assembles the order placement service over the given stores. When
// RABBITMQ_URL is configured the OrderPlaced publisher is attached; a broker that cannot
// be reached only disables publishing. The returned func closes the publisher.
func NewOrderService(cfg Config, st *stores.Stores, logger *slog.Logger) (*ordersapp.Service, func()) {
	opts := []ordersapp.Option{
		ordersapp.WithIdempotencyStore(st.Idempotency),
		ordersapp.WithLogger(logger),
	}
	closer := func() {}
	if cfg.RabbitMQURL != "" {
		publisher, err := ordersevents.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, order events disabled", slog.String("error", err.Error()))
		} else {
			logger.Info("order events enabled", slog.String("exchange", cfg.RabbitMQExchange))
			opts = append(opts, ordersapp.WithPublisher(publisher))
			closer = func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("failed to close RabbitMQ publisher", slog.String("error", err.Error()))
				}
			}
		}
	}
	service := ordersapp.NewService(st.Orders, st.Catalog, st.Coupons, pricing.NewCalculator(cfg.Pricing), opts...)
	return service, closer
}
