package service

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"

	"github.com/vendorgate/vendorgate/internal/auth"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/testutil"
)

type ActivationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ActivationService
	store   *testutil.InMemoryProcurementStore
}

func TestActivationService(t *testing.T) {
	suite.Run(t, new(ActivationServiceSuite))
}

func (s *ActivationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.store = testutil.NewInMemoryProcurementStore()
	s.GetConfig().Marketplace.AutoApproveEntitlements = true

	s.service = NewActivationService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Procurement: s.store,
		Email:       testutil.NewEmailRecorder(),
		Slack:       testutil.NewSlackRecorder(),
		Publisher:   testutil.NewPublisherRecorder(),
	})

	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
	})
}

func (s *ActivationServiceSuite) seedPending(id string) {
	s.store.SetEntitlement(&procurement.Entitlement{
		ID:      id,
		Name:    "providers/test-project/entitlements/" + id,
		Account: "providers/test-project/accounts/acc-1",
		Product: "widget-pro.endpoints.test-project.cloud.goog",
		State:   procurement.EntitlementStateActivationRequested,
	})
}

func (s *ActivationServiceSuite) activate() error {
	return s.service.Activate(s.GetContext(), &auth.MarketplaceClaims{Subject: "acc-1"})
}

func (s *ActivationServiceSuite) TestActivateApprovesAccount() {
	s.Require().NoError(s.activate())
	s.Equal([]string{"acc-1"}, s.store.ApprovedAccounts)
}

func (s *ActivationServiceSuite) TestActivateApprovesAllPendingEntitlements() {
	s.seedPending("ent-1")
	s.seedPending("ent-2")

	s.Require().NoError(s.activate())

	s.ElementsMatch([]string{"ent-1", "ent-2"}, s.store.ApprovedEntitlements)
}

func (s *ActivationServiceSuite) TestActivateSkipsEntitlementsOfOtherAccounts() {
	s.seedPending("ent-1")
	s.store.SetEntitlement(&procurement.Entitlement{
		ID:      "ent-other",
		Name:    "providers/test-project/entitlements/ent-other",
		Account: "providers/test-project/accounts/acc-2",
		State:   procurement.EntitlementStateActivationRequested,
	})

	s.Require().NoError(s.activate())

	s.Equal([]string{"ent-1"}, s.store.ApprovedEntitlements)
}

func (s *ActivationServiceSuite) TestActivateWithoutAutoApprove() {
	s.GetConfig().Marketplace.AutoApproveEntitlements = false
	s.seedPending("ent-1")

	s.Require().NoError(s.activate())

	s.Equal([]string{"acc-1"}, s.store.ApprovedAccounts)
	s.Empty(s.store.ApprovedEntitlements)
}

func (s *ActivationServiceSuite) TestAccountApprovalFailurePropagates() {
	s.store.Err = errors.New("procurement unavailable")

	s.Error(s.activate())
}
