package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/users/:userID/addresses
func (s *Server) listAddressSlots(c *gin.Context) {
	slots, err := s.addresses.Slots(c.Param("userID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]addressSlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toAddressSlotResponse(slot))
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}

// POST /api/v1/users/:userID/addresses
func (s *Server) addAddress(c *gin.Context) {
	var req addressPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := s.addresses.Add(c.Param("userID"), req.toDomain())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressSlotResponse(slot))
}

// PUT /api/v1/users/:userID/addresses/:slotID
func (s *Server) updateAddress(c *gin.Context) {
	var req addressPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := s.addresses.Update(c.Param("userID"), c.Param("slotID"), req.toDomain())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddressSlotResponse(slot))
}

// DELETE /api/v1/users/:userID/addresses/:slotID
func (s *Server) clearAddress(c *gin.Context) {
	if err := s.addresses.Clear(c.Param("userID"), c.Param("slotID")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/users/:userID/addresses/:slotID/primary
func (s *Server) setPrimaryAddress(c *gin.Context) {
	if err := s.addresses.SetPrimary(c.Param("userID"), c.Param("slotID")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
