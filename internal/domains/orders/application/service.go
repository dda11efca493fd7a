package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// MaxNumberAttempts bounds how many order numbers are tried before giving up.
const MaxNumberAttempts = 5

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo        ports.Repository
	catalog     ports.CatalogReader
	coupons     ports.CouponLookup
	calculator  pricing.Calculator
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
	numbers     domain.NumberGenerator
}

// Option customises the service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key replay.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithPublisher announces committed orders.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithLogger records post-commit failures that do not fail the order.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNumberGenerator overrides order number generation.
func WithNumberGenerator(gen domain.NumberGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.numbers = gen
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, catalog ports.CatalogReader, coupons ports.CouponLookup, calculator pricing.Calculator, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		catalog:    catalog,
		coupons:    coupons,
		calculator: calculator,
		now:        time.Now,
		numbers:    domain.NewNumber,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder validates stock, prices the lines, and commits the order atomically.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, mapError(err)
	}

	var reservation *ports.IdempotencyRecord
	key := idempotencyScope(input.Owner, input.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.replay(ctx, key, hash, input.Owner)
		if err != nil || replayed != nil {
			return replayed, err
		}
		reservation = &ports.IdempotencyRecord{Key: key, RequestHash: hash}
	}

	items, err := s.catalog.GetByIDs(ctx, lineItemIDs(input.Lines))
	if err != nil {
		return nil, mapError(err)
	}
	if err := checkStock(input.Lines, items); err != nil {
		return s.settle(ctx, reservation, input.Owner, err)
	}

	order, err := s.price(ctx, input, items)
	if err != nil {
		return nil, mapError(err)
	}

	placement := ports.Placement{Order: order, Actor: input.Owner.Actor(), Idempotency: reservation}
	if input.Owner.IsUser() {
		placement.ClearCartOf = input.Owner
	}
	if err := s.place(ctx, placement); err != nil {
		return s.settle(ctx, reservation, input.Owner, err)
	}

	s.publish(ctx, order)
	hydrated, err := s.hydrate(ctx, order)
	if err != nil {
		// The order is committed; report it without item summaries.
		s.warn(ctx, "failed to load item summaries of placed order", order.Number, err)
		return order.Clone(), nil
	}
	return hydrated, nil
}

// GetOrder loads an order by number. Orders the caller did not place are reported as not found.
func (s *Service) GetOrder(ctx context.Context, number string, caller identity.Identity) (*domain.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, ports.ErrNotFound
	}
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, mapError(err)
	}
	if !order.VisibleTo(caller) {
		return nil, ports.ErrNotFound
	}
	return s.hydrate(ctx, order)
}

func (s *Service) replay(ctx context.Context, key, hash string, caller identity.Identity) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.GetOrder(ctx, record.OrderNumber, caller)
}

// settle resolves a failed keyed placement against a request with the same key that
// committed first, replaying its order instead of reporting the failure.
func (s *Service) settle(ctx context.Context, reservation *ports.IdempotencyRecord, owner identity.Identity, cause error) (*domain.Order, error) {
	if reservation != nil {
		replayed, err := s.replay(ctx, reservation.Key, reservation.RequestHash, owner)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			return replayed, nil
		}
	}
	if errors.Is(cause, ports.ErrIdempotencyKeyInUse) {
		return nil, ports.ErrIdempotencyConflict
	}
	return nil, mapError(cause)
}

func (s *Service) price(ctx context.Context, input ordertypes.PlaceOrderInput, items map[string]*catalogdomain.Item) (*domain.Order, error) {
	lines := make([]domain.Line, 0, len(input.Lines))
	priced := make([]pricing.Line, 0, len(input.Lines))
	for _, in := range input.Lines {
		item := items[in.ItemID]
		unit := pricing.Round(item.SalePrice())
		lines = append(lines, domain.Line{
			ItemID:   item.ID,
			Quantity: in.Quantity,
			Price:    unit,
			Total:    pricing.Round(unit.Mul(decimal.NewFromInt(int64(in.Quantity)))),
		})
		priced = append(priced, pricing.Line{ItemID: item.ID, Quantity: in.Quantity, UnitPrice: unit})
	}

	var coupon *pricing.Coupon
	if code := pricing.NormalizeCode(input.CouponCode); code != "" && s.coupons != nil {
		found, err := s.coupons.FindCoupon(ctx, code)
		if err != nil {
			return nil, err
		}
		if found != nil && found.Active {
			coupon = found
		}
	}
	quote := s.calculator.Quote(priced, coupon)

	now := s.now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          input.Owner.UserID,
		SessionID:       input.Owner.SessionID,
		Status:          domain.StatusPending,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Tax:             quote.Tax,
		Shipping:        quote.Shipping,
		Total:           quote.Total,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Notes:           strings.TrimSpace(input.Notes),
		Lines:           lines,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}
	return order, nil
}

func (s *Service) place(ctx context.Context, placement ports.Placement) error {
	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		placement.Order.Number = s.numbers(s.now())
		if err := placement.Order.Validate(); err != nil {
			return err
		}
		_, err := s.repo.Place(ctx, placement)
		if errors.Is(err, domain.ErrDuplicateOrderNumber) {
			continue
		}
		return err
	}
	return ErrNumberExhausted
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, domain.NewOrderPlaced(order)); err != nil {
		s.warn(ctx, "failed to publish order placed event", order.Number, err)
	}
}

func (s *Service) warn(ctx context.Context, msg, number string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, slog.String("order.number", number), slog.String("error", err.Error()))
}

func (s *Service) hydrate(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	hydrated := order.Clone()
	items, err := s.catalog.GetByIDs(ctx, lineItemIDs(linesOf(order)))
	if err != nil {
		return nil, mapError(err)
	}
	for i := range hydrated.Lines {
		if item, ok := items[hydrated.Lines[i].ItemID]; ok {
			summary := item.Summary()
			hydrated.Lines[i].Item = &summary
		}
	}
	return hydrated, nil
}

func validateInput(input ordertypes.PlaceOrderInput) error {
	if input.Owner.UserID != "" && input.Owner.SessionID != "" {
		return identity.ErrAmbiguous
	}
	if len(input.Lines) == 0 {
		return domain.ErrEmptyLines
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.ItemID) == "" {
			return domain.ErrEmptyItemID
		}
		if line.Quantity < 1 {
			return domain.ErrInvalidQuantity
		}
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return domain.ErrMissingPaymentMethod
	}
	return nil
}

// checkStock verifies every referenced item against the summed requested quantity, in request order.
func checkStock(lines []ordertypes.LineInput, items map[string]*catalogdomain.Item) error {
	requested := map[string]int{}
	for _, line := range lines {
		requested[line.ItemID] += line.Quantity
	}
	checked := map[string]bool{}
	for _, line := range lines {
		if checked[line.ItemID] {
			continue
		}
		checked[line.ItemID] = true
		item, ok := items[line.ItemID]
		if !ok {
			return &catalogdomain.NotFoundError{ItemID: line.ItemID}
		}
		if err := item.CheckPurchase(requested[line.ItemID]); err != nil {
			return err
		}
	}
	return nil
}

func lineItemIDs(lines []ordertypes.LineInput) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}
	return ids
}

func linesOf(order *domain.Order) []ordertypes.LineInput {
	lines := make([]ordertypes.LineInput, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, ordertypes.LineInput{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	return lines
}

var _ ports.Service = (*Service)(nil)
