package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// GET /api/v1/orders/:orderID
func (s *Server) getOrder(c *gin.Context) {
	order, err := s.finalizer.Order(c.Param("orderID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// GET /api/v1/orders/:orderID/timeline
func (s *Server) getOrderTimeline(c *gin.Context) {
	events, err := s.finalizer.Timeline(c.Param("orderID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": toTimelineResponses(events)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/v1/orders/:orderID/status
func (s *Server) updateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status: " + req.Status})
		return
	}

	order, err := s.finalizer.UpdateOrderStatus(c.Param("orderID"), next)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// PUT /api/v1/orders/:orderID/payment-status
func (s *Server) updatePaymentStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, ok := domain.ParsePaymentStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status: " + req.Status})
		return
	}

	order, err := s.finalizer.UpdatePaymentStatus(c.Param("orderID"), next)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// PUT /api/v1/users/:userID/bills/:batchNo/status
func (s *Server) updateBatchStatus(c *gin.Context) {
	batchNo, err := strconv.ParseInt(c.Param("batchNo"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch number must be an integer"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status: " + req.Status})
		return
	}

	updated, err := s.finalizer.UpdateBatchStatus(c.Param("userID"), batchNo, next)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": toOrderResponses(updated)})
}
