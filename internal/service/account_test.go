package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/testutil"
)

type AccountServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AccountService
	store   *testutil.InMemoryProcurementStore
	email   *testutil.EmailRecorder
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.store = testutil.NewInMemoryProcurementStore()
	s.email = testutil.NewEmailRecorder()

	s.GetConfig().Email.Recipients = []string{"ops@example.com"}

	s.service = NewAccountService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		Procurement: s.store,
		Email:       s.email,
		Slack:       testutil.NewSlackRecorder(),
		Publisher:   testutil.NewPublisherRecorder(),
	})
}

func (s *AccountServiceSuite) seedAccount(state procurement.ApprovalState) {
	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
		Approvals: []procurement.Approval{
			{Name: procurement.ApprovalNameSignup, State: state},
		},
	})
}

func (s *AccountServiceSuite) TestPendingAccountSendsNotification() {
	s.seedAccount(procurement.ApprovalStatePending)

	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{ID: "acc-1"})

	s.Require().Len(s.email.Sent, 1)
	s.Equal("New Account Pending Approval", s.email.Sent[0].Subject)
	s.Equal([]string{"ops@example.com"}, s.email.Sent[0].Recipients)
}

func (s *AccountServiceSuite) TestApprovedAccountSendsConfirmation() {
	s.seedAccount(procurement.ApprovalStateApproved)

	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{ID: "acc-1"})

	s.Require().Len(s.email.Sent, 1)
	s.Equal("New Account Approved", s.email.Sent[0].Subject)
}

func (s *AccountServiceSuite) TestMissingAccountIsNoOp() {
	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{ID: "acc-gone"})

	s.Empty(s.email.Sent)
}

func (s *AccountServiceSuite) TestAccountWithoutSignupApprovalIsNoOp() {
	s.store.SetAccount(&procurement.Account{
		Name: "providers/test-project/accounts/acc-1",
	})

	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{ID: "acc-1"})

	s.Empty(s.email.Sent)
}

func (s *AccountServiceSuite) TestNoRecipientsConfiguredIsNoOp() {
	s.GetConfig().Email.Recipients = nil
	s.seedAccount(procurement.ApprovalStatePending)

	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{ID: "acc-1"})

	s.Empty(s.email.Sent)
}

func (s *AccountServiceSuite) TestMissingIDIsNoOp() {
	s.service.HandleAccountEvent(s.GetContext(), &procurement.AccountEvent{})
	s.service.HandleAccountEvent(s.GetContext(), nil)

	s.Empty(s.email.Sent)
}

func (s *AccountServiceSuite) TestApproveAccount() {
	s.seedAccount(procurement.ApprovalStatePending)

	s.Require().NoError(s.service.ApproveAccount(s.GetContext(), "acc-1"))
	s.Equal([]string{"acc-1"}, s.store.ApprovedAccounts)

	err := s.service.ApproveAccount(s.GetContext(), "")
	s.True(ierr.IsValidation(err))
}

func (s *AccountServiceSuite) TestResetAccount() {
	s.seedAccount(procurement.ApprovalStateApproved)

	s.Require().NoError(s.service.ResetAccount(s.GetContext(), "acc-1"))
	s.Equal([]string{"acc-1"}, s.store.ResetAccounts)

	account, err := s.store.GetAccount(s.GetContext(), "acc-1")
	s.Require().NoError(err)
	s.False(account.IsApproved())
}
