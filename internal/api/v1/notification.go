package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/api/dto"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
)

// NotificationHandler receives push notifications from the marketplace's
// message transport. The transport delivers at least once and redelivers on
// non-2xx responses, so this handler acknowledges everything with 200 —
// including malformed payloads and internal failures — to prevent
// redelivery storms. Failures are observable only via logs.
type NotificationHandler struct {
	accountService     service.AccountService
	entitlementService service.EntitlementService
	log                *logger.Logger
}

func NewNotificationHandler(
	accountService service.AccountService,
	entitlementService service.EntitlementService,
	log *logger.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		accountService:     accountService,
		entitlementService: entitlementService,
		log:                log,
	}
}

func (h *NotificationHandler) HandleNotification(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	var envelope dto.PubsubEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		log.Warnw("invalid notification envelope", "error", err)
		c.JSON(http.StatusOK, gin.H{})

		return
	}

	payload, err := envelope.DecodePayload()
	if err != nil {
		log.Errorw("failed to decode notification payload", "error", err)
		c.JSON(http.StatusOK, gin.H{})

		return
	}

	switch {
	case payload.Entitlement != nil && payload.EventType != "":
		log.Debugw("processing entitlement notification",
			"entitlement_id", payload.Entitlement.ID,
			"event_type", payload.EventType,
		)
		h.entitlementService.HandleEntitlementEvent(ctx, payload.Entitlement, payload.EventType)

	case payload.Account != nil:
		log.Debugw("processing account notification", "account_id", payload.Account.ID)
		h.accountService.HandleAccountEvent(ctx, payload.Account)

	default:
		log.Warnw("notification contains neither entitlement nor account")
	}

	c.JSON(http.StatusOK, gin.H{})
}
