package v1

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
	"github.com/vendorgate/vendorgate/internal/testutil"
)

type NotificationHandlerSuite struct {
	suite.Suite
	router *gin.Engine
	store  *testutil.InMemoryProcurementStore
	email  *testutil.EmailRecorder
}

func TestNotificationHandler(t *testing.T) {
	suite.Run(t, new(NotificationHandlerSuite))
}

func (s *NotificationHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = testutil.NewInMemoryProcurementStore()
	s.email = testutil.NewEmailRecorder()

	cfg := config.GetDefaultConfig()
	cfg.Email.Recipients = []string{"ops@example.com"}
	cfg.Products = map[string]config.ProductSettings{
		"widget-pro": {
			AutoApprove:     true,
			EmailRecipients: []string{"ops@example.com"},
		},
	}

	params := service.ServiceParams{
		Logger:      logger.NewNopLogger(),
		Config:      cfg,
		Procurement: s.store,
		Email:       s.email,
		Slack:       testutil.NewSlackRecorder(),
		Publisher:   testutil.NewPublisherRecorder(),
	}

	handler := NewNotificationHandler(
		service.NewAccountService(params),
		service.NewEntitlementService(params),
		logger.NewNopLogger(),
	)

	s.router = gin.New()
	s.router.POST("/v1/notification", handler.HandleNotification)
}

func (s *NotificationHandlerSuite) post(body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/notification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *NotificationHandlerSuite) envelope(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)

	body, err := json.Marshal(map[string]interface{}{
		"message": map[string]interface{}{
			"data": base64.StdEncoding.EncodeToString(data),
		},
	})
	s.Require().NoError(err)

	return body
}

func (s *NotificationHandlerSuite) TestMalformedBodyIsAcknowledged() {
	w := s.post([]byte("this is not json"))

	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.store.ApprovedEntitlements)
	s.Empty(s.email.Sent)
}

func (s *NotificationHandlerSuite) TestUndecodableDataIsAcknowledged() {
	body, err := json.Marshal(map[string]interface{}{
		"message": map[string]interface{}{"data": "!!!not-base64!!!"},
	})
	s.Require().NoError(err)

	w := s.post(body)

	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.email.Sent)
}

func (s *NotificationHandlerSuite) TestPayloadWithoutEntitlementOrAccount() {
	w := s.post(s.envelope(map[string]interface{}{"something": "else"}))

	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.email.Sent)
}

func (s *NotificationHandlerSuite) TestEntitlementEventIsDispatched() {
	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
		Approvals: []procurement.Approval{
			{Name: procurement.ApprovalNameSignup, State: procurement.ApprovalStateApproved},
		},
	})
	s.store.SetEntitlement(&procurement.Entitlement{
		ID:      "ent-1",
		Name:    "providers/test-project/entitlements/ent-1",
		Account: "providers/test-project/accounts/acc-1",
		Product: "widget-pro.endpoints.test-project.cloud.goog",
		State:   procurement.EntitlementStateActivationRequested,
	})

	w := s.post(s.envelope(map[string]interface{}{
		"eventType":   "ENTITLEMENT_CREATION_REQUESTED",
		"entitlement": map[string]interface{}{"id": "ent-1"},
	}))

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"ent-1"}, s.store.ApprovedEntitlements)
}

func (s *NotificationHandlerSuite) TestAccountEventIsDispatched() {
	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
		Approvals: []procurement.Approval{
			{Name: procurement.ApprovalNameSignup, State: procurement.ApprovalStatePending},
		},
	})

	w := s.post(s.envelope(map[string]interface{}{
		"account": map[string]interface{}{"id": "acc-1"},
	}))

	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(s.email.Sent, 1)
	s.Equal("New Account Pending Approval", s.email.Sent[0].Subject)
}

func (s *NotificationHandlerSuite) TestDownstreamFailureIsAcknowledged() {
	// Entitlement referenced by the event does not exist and the account
	// fetch would fail too; the webhook still acknowledges.
	w := s.post(s.envelope(map[string]interface{}{
		"eventType":   "ENTITLEMENT_ACTIVE",
		"entitlement": map[string]interface{}{"id": "ent-missing"},
	}))

	s.Equal(http.StatusOK, w.Code)
}
