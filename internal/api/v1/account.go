package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/api/dto"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
)

type AccountHandler struct {
	service service.AccountService
	log     *logger.Logger
}

func NewAccountHandler(service service.AccountService, log *logger.Logger) *AccountHandler {
	return &AccountHandler{service: service, log: log}
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to list accounts", "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) ApproveAccount(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation))

		return
	}

	if err := h.service.ApproveAccount(c.Request.Context(), id); err != nil {
		h.log.Errorw("failed to approve account", "account_id", id, "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *AccountHandler) ResetAccount(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation))

		return
	}

	if err := h.service.ResetAccount(c.Request.Context(), id); err != nil {
		h.log.Errorw("failed to reset account", "account_id", id, "error", err)
		c.Error(err)

		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
