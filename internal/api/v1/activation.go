package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/auth"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
	"github.com/vendorgate/vendorgate/internal/types"
)

const activationSuccessMessage = "Your account has been approved. You can close this window."

// ActivationHandler terminates the marketplace signup redirect: the
// marketplace frontend POSTs a signed token here, and a verified token
// approves the account it was minted for.
type ActivationHandler struct {
	verifier auth.MarketplaceVerifier
	service  service.ActivationService
	log      *logger.Logger
}

func NewActivationHandler(
	verifier auth.MarketplaceVerifier,
	service service.ActivationService,
	log *logger.Logger,
) *ActivationHandler {
	return &ActivationHandler{
		verifier: verifier,
		service:  service,
		log:      log,
	}
}

// Activate verifies the posted marketplace token and approves the account
// named in its subject. Any verification failure is a 401 with a terse
// reason; the token itself is never echoed back.
func (h *ActivationHandler) Activate(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	rawToken := c.PostForm(types.FormFieldMarketplaceToken)
	log.Debugw("processing marketplace token", "token_present", rawToken != "")

	claims, err := h.verifier.Verify(ctx, rawToken)
	if err != nil {
		log.Errorw("marketplace token rejected", "error", err)

		reason := ierr.Hint(err)
		if reason == "" {
			reason = "Invalid token"
		}

		c.String(http.StatusUnauthorized, reason)

		return
	}

	if err := h.service.Activate(ctx, claims); err != nil {
		log.Errorw("account activation failed",
			"account_id", claims.Subject,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve account"})

		return
	}

	c.String(http.StatusOK, activationSuccessMessage)
}
