package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/api/dto"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
)

type EntitlementHandler struct {
	service service.EntitlementService
	log     *logger.Logger
}

func NewEntitlementHandler(service service.EntitlementService, log *logger.Logger) *EntitlementHandler {
	return &EntitlementHandler{service: service, log: log}
}

// ListEntitlements lists entitlements filtered by state. Unknown or missing
// state values fall back to ACTIVATION_REQUESTED, the operator's work queue.
func (h *EntitlementHandler) ListEntitlements(c *gin.Context) {
	state, ok := procurement.EntitlementStateFromFilterValue(c.Query("state"))
	if !ok {
		state = procurement.EntitlementStateActivationRequested
	}

	entitlements, err := h.service.ListEntitlements(c.Request.Context(), state)
	if err != nil {
		h.log.Errorw("failed to list entitlements", "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, dto.ListEntitlementsResponse{Entitlements: entitlements})
}

func (h *EntitlementHandler) ApproveEntitlement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Entitlement ID is required").
			Mark(ierr.ErrValidation))

		return
	}

	if err := h.service.ApproveEntitlement(c.Request.Context(), id); err != nil {
		h.log.Errorw("failed to approve entitlement", "entitlement_id", id, "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *EntitlementHandler) RejectEntitlement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Entitlement ID is required").
			Mark(ierr.ErrValidation))

		return
	}

	var req dto.RejectEntitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Missing rejection reason").
			Mark(ierr.ErrValidation))

		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	if err := h.service.RejectEntitlement(c.Request.Context(), id, req.Reason); err != nil {
		h.log.Errorw("failed to reject entitlement", "entitlement_id", id, "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
