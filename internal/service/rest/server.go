package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/health"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/addressbook"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/billing"
	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/service/checkout"
)

// Server — HTTP-фасад над сервисами оформления.
type Server struct {
	cart      *checkout.Cart
	finalizer *checkout.Finalizer
	billing   *billing.Service
	addresses *addressbook.Service
	products  domain.ProductRepository
	health    *health.Handler
	logger    *log.Entry
}

// NewServer создаёт HTTP-сервер поверх собранных сервисов.
func NewServer(
	cart *checkout.Cart,
	finalizer *checkout.Finalizer,
	billingSvc *billing.Service,
	addresses *addressbook.Service,
	products domain.ProductRepository,
	healthHandler *health.Handler,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return &Server{
		cart:      cart,
		finalizer: finalizer,
		billing:   billingSvc,
		addresses: addresses,
		products:  products,
		health:    healthHandler,
		logger:    logger,
	}
}

// Router собирает gin-маршрутизатор со всеми эндпоинтами сервиса.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	if s.health != nil {
		router.GET("/healthz", gin.WrapH(s.health))
		router.GET("/livez", gin.WrapF(health.LivenessHandler))
		router.GET("/readyz", gin.WrapF(s.health.ReadinessHandler))
	}

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users/:userID")
		{
			users.GET("/cart", s.listCart)
			users.POST("/cart", s.addCartLine)
			users.POST("/checkout", s.finalizeCheckout)
			users.GET("/bills", s.listUserBills)
			users.GET("/bills/:batchNo", s.getUserBill)
			users.PUT("/bills/:batchNo/status", s.updateBatchStatus)

			users.GET("/addresses", s.listAddressSlots)
			users.POST("/addresses", s.addAddress)
			users.PUT("/addresses/:slotID", s.updateAddress)
			users.DELETE("/addresses/:slotID", s.clearAddress)
			users.POST("/addresses/:slotID/primary", s.setPrimaryAddress)
		}

		v1.PUT("/cart/:lineID", s.updateCartLine)
		v1.DELETE("/cart/:lineID", s.removeCartLine)

		v1.GET("/orders/:orderID", s.getOrder)
		v1.GET("/orders/:orderID/timeline", s.getOrderTimeline)
		v1.PUT("/orders/:orderID/status", s.updateOrderStatus)
		v1.PUT("/orders/:orderID/payment-status", s.updatePaymentStatus)

		v1.GET("/bills", s.listAllBills)

		v1.GET("/products/:productID", s.getProduct)
		v1.PUT("/products/:productID", s.saveProduct)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("http request handled")
	}
}

// respondError транслирует доменные ошибки в HTTP-статусы.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartLineNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrProductRequired),
		errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrRateInvalid),
		errors.Is(err, domain.ErrSlotInvalid),
		errors.Is(err, domain.ErrMalformedAddress):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrSlotsFull),
		errors.Is(err, domain.ErrSlotEmpty),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrInvalidPaymentTransition),
		errors.Is(err, domain.ErrOrderVersionConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
