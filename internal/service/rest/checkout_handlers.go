package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	FinalAmountMinor int64  `json:"final_amount_minor"`
	AddressSlot      string `json:"address_slot"`
	PaymentMethod    string `json:"payment_method"`
}

type checkoutResponse struct {
	BatchNo int64                `json:"batch_no"`
	Ordered []orderResponse      `json:"ordered"`
	Failed  []failedLineResponse `json:"failed"`
}

// POST /api/v1/users/:userID/checkout
func (s *Server) finalizeCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.finalizer.Finalize(c.Param("userID"), req.FinalAmountMinor, req.AddressSlot, req.PaymentMethod)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// Частичный и полный отказ по строкам — не ошибка HTTP-уровня:
	// клиент получает разбивку по строкам и решает сам.
	c.JSON(http.StatusOK, checkoutResponse{
		BatchNo: result.BatchNo,
		Ordered: toOrderResponses(result.Ordered),
		Failed:  toFailedLineResponses(result.Failed),
	})
}

// GET /api/v1/users/:userID/bills
func (s *Server) listUserBills(c *gin.Context) {
	bills, err := s.billing.BillsForUser(c.Param("userID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": toBillResponses(bills)})
}

// GET /api/v1/users/:userID/bills/:batchNo
func (s *Server) getUserBill(c *gin.Context) {
	batchNo, err := strconv.ParseInt(c.Param("batchNo"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch number must be an integer"})
		return
	}

	bill, err := s.billing.Bill(c.Param("userID"), batchNo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

// GET /api/v1/bills
func (s *Server) listAllBills(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	bills, err := s.billing.AllBills(limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": toBillResponses(bills)})
}
