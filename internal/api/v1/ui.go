package v1

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// uiFilterStates are the states the entitlement list page offers, in
// short filter-grammar form.
var uiFilterStates = []string{
	procurement.EntitlementStateActivationRequested.FilterValue(),
	procurement.EntitlementStateActive.FilterValue(),
	procurement.EntitlementStatePendingPlanChangeApproval.FilterValue(),
	procurement.EntitlementStatePendingCancellation.FilterValue(),
	procurement.EntitlementStateCancelled.FilterValue(),
	procurement.EntitlementStateSuspended.FilterValue(),
}

// UIHandler serves the server-rendered operator pages. The pages are thin
// read views plus buttons calling the control API; all state lives in the
// procurement service.
type UIHandler struct {
	accountService     service.AccountService
	entitlementService service.EntitlementService
	templates          *template.Template
	log                *logger.Logger
}

func NewUIHandler(
	accountService service.AccountService,
	entitlementService service.EntitlementService,
	log *logger.Logger,
) *UIHandler {
	templates := template.Must(template.ParseFS(templateFS, "templates/*.html"))

	return &UIHandler{
		accountService:     accountService,
		entitlementService: entitlementService,
		templates:          templates,
		log:                log,
	}
}

// Entitlements renders the entitlement work queue, filtered by state.
// Unknown state values fall back to ACTIVATION_REQUESTED.
func (h *UIHandler) Entitlements(c *gin.Context) {
	ctx := c.Request.Context()

	state, ok := procurement.EntitlementStateFromFilterValue(c.Query("state"))
	if !ok {
		state = procurement.EntitlementStateActivationRequested
	}

	entitlements, err := h.entitlementService.ListEntitlements(ctx, state)
	if err != nil {
		h.log.Errorw("failed to load entitlements page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Loading failed"})

		return
	}

	h.render(c, http.StatusOK, "index.html", gin.H{
		"State":        state.FilterValue(),
		"States":       uiFilterStates,
		"Entitlements": entitlements,
	})
}

func (h *UIHandler) Accounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to load accounts page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Loading failed"})

		return
	}

	h.render(c, http.StatusOK, "accounts.html", gin.H{
		"Accounts": accounts,
	})
}

func (h *UIHandler) Account(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		h.render(c, http.StatusBadRequest, "account.html", gin.H{
			"Error": "Missing account ID",
		})

		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		if ierr.IsNotFound(err) {
			h.render(c, http.StatusNotFound, "account.html", gin.H{
				"Error": "Account not found",
			})

			return
		}

		h.log.Errorw("failed to load account page", "account_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Loading failed"})

		return
	}

	h.render(c, http.StatusOK, "account.html", gin.H{
		"Account": account,
	})
}

func (h *UIHandler) Signup(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", gin.H{})
}

func (h *UIHandler) render(c *gin.Context, status int, name string, data gin.H) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")

	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		h.log.Errorw("failed to render template", "template", name, "error", err)
	}
}
