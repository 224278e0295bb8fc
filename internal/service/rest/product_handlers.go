package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/domain"
)

// GET /api/v1/products/:productID
func (s *Server) getProduct(c *gin.Context) {
	product, err := s.products.Get(c.Param("productID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// PUT /api/v1/products/:productID
func (s *Server) saveProduct(c *gin.Context) {
	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product name is required"})
		return
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be non-negative"})
		return
	}
	if req.PriceMinor < 0 {
		s.respondError(c, domain.ErrRateInvalid)
		return
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:         c.Param("productID"),
		Name:       req.Name,
		Quantity:   req.Quantity,
		PriceMinor: req.PriceMinor,
		TaxCode:    req.TaxCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.products.Save(product); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}
