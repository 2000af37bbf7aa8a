package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/vendorgate/vendorgate/internal/auth"
	"github.com/vendorgate/vendorgate/internal/config"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
	"github.com/vendorgate/vendorgate/internal/service"
	"github.com/vendorgate/vendorgate/internal/testutil"
	"github.com/vendorgate/vendorgate/internal/types"
)

// stubVerifier accepts a single hard-coded token and rejects everything else.
type stubVerifier struct {
	validToken string
	subject    string
}

func (v *stubVerifier) Verify(ctx context.Context, rawToken string) (*auth.MarketplaceClaims, error) {
	if rawToken != v.validToken {
		return nil, ierr.NewError("marketplace token failed verification").
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	return &auth.MarketplaceClaims{Subject: v.subject}, nil
}

type ActivationHandlerSuite struct {
	suite.Suite
	router *gin.Engine
	store  *testutil.InMemoryProcurementStore
}

func TestActivationHandler(t *testing.T) {
	suite.Run(t, new(ActivationHandlerSuite))
}

func (s *ActivationHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = testutil.NewInMemoryProcurementStore()

	cfg := config.GetDefaultConfig()
	cfg.Marketplace.AutoApproveEntitlements = true

	params := service.ServiceParams{
		Logger:      logger.NewNopLogger(),
		Config:      cfg,
		Procurement: s.store,
		Email:       testutil.NewEmailRecorder(),
		Slack:       testutil.NewSlackRecorder(),
		Publisher:   testutil.NewPublisherRecorder(),
	}

	handler := NewActivationHandler(
		&stubVerifier{validToken: "good-token", subject: "acc-1"},
		service.NewActivationService(params),
		logger.NewNopLogger(),
	)

	s.router = gin.New()
	s.router.POST("/activate", handler.Activate)
}

func (s *ActivationHandlerSuite) postToken(token string) *httptest.ResponseRecorder {
	form := url.Values{}
	if token != "" {
		form.Set(types.FormFieldMarketplaceToken, token)
	}

	req := httptest.NewRequest(http.MethodPost, "/activate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *ActivationHandlerSuite) TestValidTokenApprovesAccount() {
	w := s.postToken("good-token")

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Your account has been approved")
	s.Equal([]string{"acc-1"}, s.store.ApprovedAccounts)
}

func (s *ActivationHandlerSuite) TestInvalidTokenIsUnauthorized() {
	w := s.postToken("forged-token")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Empty(s.store.ApprovedAccounts)
}

func (s *ActivationHandlerSuite) TestMissingTokenIsUnauthorized() {
	w := s.postToken("")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Empty(s.store.ApprovedAccounts)
}
