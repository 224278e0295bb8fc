package integration

import (
	"context"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/addressbook"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/billing"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/checkout"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/inventory"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/outbox"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/memory"
)

// CheckoutLifecycleTestSuite тестирует полный жизненный цикл оформления.
type CheckoutLifecycleTestSuite struct {
	suite.Suite
	products  domain.ProductRepository
	cartRepo  domain.CartRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository
	cart      *checkout.Cart
	finalizer *checkout.Finalizer
	billing   *billing.Service
	addresses *addressbook.Service
}

func (suite *CheckoutLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.products = memory.NewProductRepository()
	suite.cartRepo = memory.NewCartRepository()
	suite.orders = memory.NewOrderRepository()
	suite.outbox = memory.NewOutboxRepository()
	suite.timeline = memory.NewTimelineRepository()
	addressRepo := memory.NewAddressRepository()

	suite.finalizer = checkout.NewFinalizerWithoutMetrics(
		suite.cartRepo,
		suite.orders,
		addressRepo,
		inventory.NewLedger(suite.products, logger),
		memory.NewBillSequencer(0),
		suite.outbox,
		suite.timeline,
		logger,
	)
	suite.cart = checkout.NewCart(suite.cartRepo, suite.products, logger)
	suite.billing = billing.NewService(suite.orders, logger)
	suite.addresses = addressbook.NewService(addressRepo, logger)
}

func (suite *CheckoutLifecycleTestSuite) seedProduct(id string, qty int32, priceMinor int64) {
	err := suite.products.Save(domain.Product{
		ID:         id,
		Name:       "product " + id,
		Quantity:   qty,
		PriceMinor: priceMinor,
		TaxCode:    "6403",
	})
	require.NoError(suite.T(), err)
}

func (suite *CheckoutLifecycleTestSuite) TestSuccessfulCheckoutLifecycle() {
	t := suite.T()

	// 1. Каталог и адрес
	suite.seedProduct("laptop-pro", 5, 199900)
	suite.seedProduct("mouse-wireless", 20, 4999)

	_, err := suite.addresses.Add("customer-123", domain.Address{
		Name:        "Ravi Kumar",
		Mobile:      "9876543210",
		City:        "Bengaluru",
		State:       "Karnataka",
		PinCode:     "560001",
		Country:     "India",
		AddrType:    domain.AddrTypePrimary,
		CountryCode: "+91",
	})
	require.NoError(t, err)

	// 2. Наполняем корзину
	_, err = suite.cart.AddLine("customer-123", "laptop-pro", 1)
	require.NoError(t, err)
	_, err = suite.cart.AddLine("customer-123", "mouse-wireless", 2)
	require.NoError(t, err)

	// 3. Оформляем
	result, err := suite.finalizer.Finalize("customer-123", 209898, "1", "COD")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.BatchNo)
	require.Len(t, result.Ordered, 2)
	require.Empty(t, result.Failed)

	var total int64
	for _, order := range result.Ordered {
		require.Equal(t, domain.OrderStatusOrdered, order.OrderStatus)
		require.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
		require.Equal(t, int64(209898), order.FinalAmountMinor)
		total += order.AmountMinor
	}
	require.Equal(t, int64(209898), total) // $1999 + 2*$49.99

	// 4. Корзина пуста, остатки списаны
	count, err := suite.cartRepo.CountByUser("customer-123")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	laptop, err := suite.products.Get("laptop-pro")
	require.NoError(t, err)
	require.Equal(t, int32(4), laptop.Quantity)

	// 5. Счёт собирается из строк партии
	bill, err := suite.billing.Bill("customer-123", result.BatchNo)
	require.NoError(t, err)
	require.Equal(t, 2, bill.LineCount)
	require.Equal(t, int64(209898), bill.TotalAmountMinor)
	require.Equal(t, "Ravi Kumar", bill.Address.Name)

	// 6. Жизненный цикл: доставка и оплата
	orderID := result.Ordered[0].ID
	_, err = suite.finalizer.UpdateOrderStatus(orderID, domain.OrderStatusShipped)
	require.NoError(t, err)
	_, err = suite.finalizer.UpdateOrderStatus(orderID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	_, err = suite.finalizer.UpdatePaymentStatus(orderID, domain.PaymentStatusPaid)
	require.NoError(t, err)

	events, err := suite.finalizer.Timeline(orderID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(events), 4) // created -> shipped -> delivered -> paid

	// 7. Outbox накопил события оформления и переходов
	pending, err := suite.outbox.PullPending(100)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
}

func (suite *CheckoutLifecycleTestSuite) TestRejectedBatchLeavesNoTrace() {
	t := suite.T()

	suite.seedProduct("laptop-pro", 1, 199900)

	_, err := suite.cart.AddLine("customer-123", "laptop-pro", 3)
	require.NoError(t, err)

	result, err := suite.finalizer.Finalize("customer-123", 0, "1", "card")
	require.NoError(t, err)
	require.Equal(t, int64(0), result.BatchNo)
	require.Empty(t, result.Ordered)
	require.Len(t, result.Failed, 1)
	require.Equal(t, domain.FailureOutOfStock, result.Failed[0].Kind)

	// Ни списаний, ни заказов, корзина цела.
	laptop, err := suite.products.Get("laptop-pro")
	require.NoError(t, err)
	require.Equal(t, int32(1), laptop.Quantity)

	count, err := suite.cartRepo.CountByUser("customer-123")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	bills, err := suite.billing.BillsForUser("customer-123")
	require.NoError(t, err)
	require.Empty(t, bills)
}

func (suite *CheckoutLifecycleTestSuite) TestOutboxWorkerDrainsEvents() {
	t := suite.T()

	suite.seedProduct("laptop-pro", 5, 199900)
	_, err := suite.cart.AddLine("customer-123", "laptop-pro", 1)
	require.NoError(t, err)

	result, err := suite.finalizer.Finalize("customer-123", 199900, "", "card")
	require.NoError(t, err)
	require.Len(t, result.Ordered, 1)

	publisher := &recordingPublisher{}
	worker := outbox.NewWorker(suite.outbox, publisher, outbox.Settings{MaxAttempts: 3})
	worker.ProcessOnce(context.Background())

	require.Equal(t, 1, publisher.count())

	stats, err := suite.outbox.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.PendingCount)
}

func TestCheckoutLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutLifecycleTestSuite))
}

// recordingPublisher считает опубликованные сообщения.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []domain.OutboxMessage
}

func (p *recordingPublisher) Publish(msg domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}
