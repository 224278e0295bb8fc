package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartLineRequest struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

// POST /api/v1/users/:userID/cart
func (s *Server) addCartLine(c *gin.Context) {
	var req addCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := s.cart.AddLine(c.Param("userID"), req.ProductID, req.Qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartLineResponse(line))
}

// GET /api/v1/users/:userID/cart
func (s *Server) listCart(c *gin.Context) {
	lines, err := s.cart.List(c.Param("userID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lines": toCartLineResponses(lines),
		"count": len(lines),
	})
}

type updateCartLineRequest struct {
	Qty int32 `json:"qty"`
}

// PUT /api/v1/cart/:lineID
func (s *Server) updateCartLine(c *gin.Context) {
	var req updateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := s.cart.UpdateQty(c.Param("lineID"), req.Qty)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartLineResponse(line))
}

// DELETE /api/v1/cart/:lineID
func (s *Server) removeCartLine(c *gin.Context) {
	if err := s.cart.Remove(c.Param("lineID")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
