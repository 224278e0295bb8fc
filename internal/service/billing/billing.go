package billing

import (
	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// Service строит счета из строк заказов. Счёт — производное представление,
// нигде не хранится.
type Service struct {
	orders domain.OrderRepository
	logger *log.Entry
}

// NewService создаёт сервис выдачи счетов.
func NewService(orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "billing")
	}
	return &Service{orders: orders, logger: logger}
}

// BillsForUser возвращает счета пользователя, свежие первыми.
func (s *Service) BillsForUser(userID string) ([]domain.Bill, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	orders, err := s.orders.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildBills(orders), nil
}

// Bill возвращает один счёт пользователя по номеру.
func (s *Service) Bill(userID string, batchNo int64) (domain.Bill, error) {
	orders, err := s.orders.ListByUserAndBatch(userID, batchNo)
	if err != nil {
		return domain.Bill{}, err
	}
	if len(orders) == 0 {
		return domain.Bill{}, domain.ErrOrderNotFound
	}
	bills := domain.BuildBills(orders)
	return bills[0], nil
}

// AllBills возвращает страницу счетов по всем пользователям.
// Пагинация применяется к строкам заказов до группировки.
func (s *Service) AllBills(limit, offset int) ([]domain.Bill, error) {
	orders, err := s.orders.List(limit, offset)
	if err != nil {
		return nil, err
	}
	return domain.BuildBills(orders), nil
}
