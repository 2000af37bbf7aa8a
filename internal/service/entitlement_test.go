package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/testutil"
)

type EntitlementServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   EntitlementService
	store     *testutil.InMemoryProcurementStore
	email     *testutil.EmailRecorder
	slack     *testutil.SlackRecorder
	publisher *testutil.PublisherRecorder
}

func TestEntitlementService(t *testing.T) {
	suite.Run(t, new(EntitlementServiceSuite))
}

func (s *EntitlementServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.store = testutil.NewInMemoryProcurementStore()
	s.email = testutil.NewEmailRecorder()
	s.slack = testutil.NewSlackRecorder()
	s.publisher = testutil.NewPublisherRecorder()

	s.GetConfig().Products = map[string]config.ProductSettings{
		"widget-pro": {
			AutoApprove:     true,
			EmailRecipients: []string{"ops@example.com"},
			SlackWebhook:    "https://hooks.slack.example/T000/B000",
			EventTopic:      "widget-pro-events",
		},
	}

	s.service = NewEntitlementService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Procurement: s.store,
		Email:       s.email,
		Slack:       s.slack,
		Publisher:   s.publisher,
	})

	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
		Approvals: []procurement.Approval{
			{Name: procurement.ApprovalNameSignup, State: procurement.ApprovalStateApproved},
		},
	})
}

func (s *EntitlementServiceSuite) seedEntitlement(state procurement.EntitlementState) *procurement.Entitlement {
	entitlement := &procurement.Entitlement{
		ID:      "ent-1",
		Name:    "providers/test-project/entitlements/ent-1",
		Account: "providers/test-project/accounts/acc-1",
		Product: "widget-pro.endpoints.test-project.cloud.goog",
		Plan:    "plan-basic",
		State:   state,
	}
	s.store.SetEntitlement(entitlement)

	return entitlement
}

func (s *EntitlementServiceSuite) handle(eventType procurement.EventType) {
	s.service.HandleEntitlementEvent(s.GetContext(),
		&procurement.EntitlementEvent{ID: "ent-1"}, eventType)
}

func (s *EntitlementServiceSuite) TestCreationRequestedAutoApproves() {
	s.seedEntitlement(procurement.EntitlementStateActivationRequested)

	s.handle(procurement.EventTypeCreationRequested)

	s.Equal([]string{"ent-1"}, s.store.ApprovedEntitlements)

	s.Require().Len(s.email.Sent, 1)
	s.Equal("New Entitlement Creation Request", s.email.Sent[0].Subject)
	s.Equal([]string{"ops@example.com"}, s.email.Sent[0].Recipients)

	s.Require().Len(s.slack.Notifications, 1)
	s.Equal("https://hooks.slack.example/T000/B000", s.slack.Notifications[0].WebhookURL)
}

func (s *EntitlementServiceSuite) TestCreationRequestedWithoutAutoApprove() {
	settings := s.GetConfig().Products["widget-pro"]
	settings.AutoApprove = false
	s.GetConfig().Products["widget-pro"] = settings

	s.seedEntitlement(procurement.EntitlementStateActivationRequested)

	s.handle(procurement.EventTypeCreationRequested)

	s.Empty(s.store.ApprovedEntitlements)
	s.Len(s.email.Sent, 1)
}

func (s *EntitlementServiceSuite) TestCreationRequestedUnapprovedAccount() {
	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
	})
	s.seedEntitlement(procurement.EntitlementStateActivationRequested)

	s.handle(procurement.EventTypeCreationRequested)

	s.Empty(s.store.ApprovedEntitlements)
	s.Empty(s.email.Sent)
	s.Empty(s.slack.Notifications)
}

func (s *EntitlementServiceSuite) TestMissingEntitlementIsNoOp() {
	// Redelivery after the entitlement was cancelled and deleted upstream.
	s.handle(procurement.EventTypeCreationRequested)

	s.Empty(s.store.ApprovedEntitlements)
	s.Empty(s.email.Sent)
	s.Empty(s.publisher.Published)
}

func (s *EntitlementServiceSuite) TestUnknownProductIsNoOp() {
	entitlement := s.seedEntitlement(procurement.EntitlementStateActivationRequested)
	entitlement.Product = "unknown-product.endpoints.test-project.cloud.goog"

	s.handle(procurement.EventTypeCreationRequested)

	s.Empty(s.store.ApprovedEntitlements)
	s.Empty(s.email.Sent)
}

func (s *EntitlementServiceSuite) TestStateMismatchIsNoOp() {
	// The remote state already moved past activation; the stale event is
	// informational only.
	s.seedEntitlement(procurement.EntitlementStateActive)

	s.handle(procurement.EventTypeCreationRequested)

	s.Empty(s.store.ApprovedEntitlements)
	s.Empty(s.email.Sent)
}

func (s *EntitlementServiceSuite) TestActivePublishesCreateEvent() {
	s.seedEntitlement(procurement.EntitlementStateActive)

	s.handle(procurement.EventTypeActive)

	s.Require().Len(s.publisher.Published, 1)
	s.Equal("widget-pro-events", s.publisher.Published[0].Topic)
	s.Equal(procurement.ChangeEventCreate, s.publisher.Published[0].Event.Event)
	s.Equal("ent-1", s.publisher.Published[0].Event.Entitlement.ID)
}

func (s *EntitlementServiceSuite) TestActiveWithoutTopicDropsEvent() {
	settings := s.GetConfig().Products["widget-pro"]
	settings.EventTopic = ""
	s.GetConfig().Products["widget-pro"] = settings

	s.seedEntitlement(procurement.EntitlementStateActive)

	s.handle(procurement.EventTypeActive)

	s.Empty(s.publisher.Published)
}

func (s *EntitlementServiceSuite) TestPlanChangeRequestedApprovesChange() {
	entitlement := s.seedEntitlement(procurement.EntitlementStatePendingPlanChangeApproval)
	entitlement.NewPendingPlan = "plan-pro"

	s.handle(procurement.EventTypePlanChangeRequested)

	s.Equal("plan-pro", s.store.ApprovedPlanChanges["ent-1"])
}

func (s *EntitlementServiceSuite) TestPlanChangeRequestedWithoutPendingPlan() {
	s.seedEntitlement(procurement.EntitlementStatePendingPlanChangeApproval)

	s.handle(procurement.EventTypePlanChangeRequested)

	s.Empty(s.store.ApprovedPlanChanges)
}

func (s *EntitlementServiceSuite) TestPlanChangedPublishesUpgradeEvent() {
	s.seedEntitlement(procurement.EntitlementStateActive)

	s.handle(procurement.EventTypePlanChanged)

	s.Require().Len(s.publisher.Published, 1)
	s.Equal(procurement.ChangeEventUpgrade, s.publisher.Published[0].Event.Event)
}

func (s *EntitlementServiceSuite) TestCancelledPublishesDestroyEvent() {
	s.seedEntitlement(procurement.EntitlementStateCancelled)

	s.handle(procurement.EventTypeCancelled)

	s.Require().Len(s.publisher.Published, 1)
	s.Equal(procurement.ChangeEventDestroy, s.publisher.Published[0].Event.Event)
}

func (s *EntitlementServiceSuite) TestPendingCancellationIsNoOp() {
	s.seedEntitlement(procurement.EntitlementStatePendingCancellation)

	s.handle(procurement.EventTypePendingCancellation)

	s.Empty(s.publisher.Published)
	s.Empty(s.email.Sent)
}

func (s *EntitlementServiceSuite) TestOfferAcceptedSendsEmail() {
	s.seedEntitlement(procurement.EntitlementStateActivationRequested)

	s.handle(procurement.EventTypeOfferAccepted)

	s.Require().Len(s.email.Sent, 1)
	s.Equal("New Entitlement Offer Accepted", s.email.Sent[0].Subject)
}

func (s *EntitlementServiceSuite) TestRedeliveredActiveEventPublishesAgain() {
	// At-least-once delivery means duplicates reach the handler; publishing
	// is idempotent downstream so the handler does not deduplicate.
	s.seedEntitlement(procurement.EntitlementStateActive)

	s.handle(procurement.EventTypeActive)
	s.handle(procurement.EventTypeActive)

	s.Len(s.publisher.Published, 2)
}

func (s *EntitlementServiceSuite) TestApproveEntitlementValidation() {
	err := s.service.ApproveEntitlement(s.GetContext(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *EntitlementServiceSuite) TestRejectEntitlementRequiresReason() {
	err := s.service.RejectEntitlement(s.GetContext(), "ent-1", "")
	s.Error(err)
	s.True(ierr.IsValidation(err))

	s.NoError(s.service.RejectEntitlement(s.GetContext(), "ent-1", "not supported"))
	s.Equal("not supported", s.store.RejectedEntitlements["ent-1"])
}

func (s *EntitlementServiceSuite) TestListEntitlementsFiltersByState() {
	s.seedEntitlement(procurement.EntitlementStateActivationRequested)
	s.store.SetEntitlement(&procurement.Entitlement{
		ID:      "ent-2",
		Name:    "providers/test-project/entitlements/ent-2",
		Account: "providers/test-project/accounts/acc-1",
		Product: "widget-pro.endpoints.test-project.cloud.goog",
		State:   procurement.EntitlementStateActive,
	})

	entitlements, err := s.service.ListEntitlements(s.GetContext(), procurement.EntitlementStateActive)
	s.Require().NoError(err)
	s.Require().Len(entitlements, 1)
	s.Equal("ent-2", entitlements[0].ID)
}
