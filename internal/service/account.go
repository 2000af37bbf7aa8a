package service

import (
	"context"
	"encoding/json"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	"github.com/vendorgate/vendorgate/internal/email"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

const accountEmailFooter = "If you did not subscribe to this, you may ignore this message."

// AccountService reacts to account lifecycle notifications and exposes the
// operator-driven account operations of the control API.
type AccountService interface {
	// HandleAccountEvent processes an inbound account notification. It
	// never returns an error: the transport must not redeliver because of
	// handler failures, so everything is logged and swallowed here.
	HandleAccountEvent(ctx context.Context, event *procurement.AccountEvent)

	GetAccount(ctx context.Context, accountID string) (*procurement.Account, error)
	ListAccounts(ctx context.Context) ([]*procurement.Account, error)
	ApproveAccount(ctx context.Context, accountID string) error
	ResetAccount(ctx context.Context, accountID string) error
}

type accountService struct {
	ServiceParams
}

// NewAccountService creates a new account service.
func NewAccountService(params ServiceParams) AccountService {
	return &accountService{ServiceParams: params}
}

func (s *accountService) HandleAccountEvent(ctx context.Context, event *procurement.AccountEvent) {
	log := s.Logger.WithContext(ctx)

	if event == nil || event.ID == "" {
		log.Errorw("invalid account event, missing id", "event", event)
		return
	}

	account, err := s.Procurement.GetAccount(ctx, event.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// Already deleted upstream or not created yet; nothing to
			// reconcile and no retry is scheduled here.
			log.Debugw("account not found in procurement service, nothing to do",
				"account_id", event.ID)
			return
		}

		log.Errorw("failed to fetch account", "account_id", event.ID, "error", err)

		return
	}

	approval, found := account.SignupApproval()
	if !found {
		log.Warnw("no signup approval found on account", "account_id", event.ID)
		return
	}

	recipients := s.Config.Email.Recipients
	if len(recipients) == 0 {
		log.Warnw("no email recipients configured, skipping account notification",
			"account_id", event.ID)
		return
	}

	switch approval.State {
	case procurement.ApprovalStatePending:
		log.Infow("account is pending approval, sending notification", "account_id", event.ID)
		s.sendAccountEmail(ctx, account, recipients,
			"New Account Pending Approval",
			"The following account is pending a response:",
		)

	case procurement.ApprovalStateApproved:
		log.Infow("account is approved, sending confirmation", "account_id", event.ID)
		s.sendAccountEmail(ctx, account, recipients,
			"New Account Approved",
			"The following account has been approved:",
		)

	default:
		log.Warnw("unknown account approval state",
			"account_id", event.ID,
			"approval_state", approval.State,
		)
	}
}

func (s *accountService) sendAccountEmail(ctx context.Context, account *procurement.Account, recipients []string, subject, headline string) {
	body, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		s.Logger.Errorw("failed to render account payload", "error", err)
		return
	}

	err = s.Email.SendTemplated(ctx, email.SendTemplatedRequest{
		Subject:      subject,
		Recipients:   recipients,
		TemplatePath: "account.html",
		Data: map[string]interface{}{
			"title":    subject,
			"headline": headline,
			"body":     string(body),
			"footer":   accountEmailFooter,
		},
	})
	if err != nil {
		// Notification failures never escalate; the approval state lives
		// remotely and the operator can still act from the UI.
		s.Logger.Errorw("failed to send account notification", "error", err)
	}
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*procurement.Account, error) {
	if accountID == "" {
		return nil, ierr.NewError("account id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation)
	}

	return s.Procurement.GetAccount(ctx, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context) ([]*procurement.Account, error) {
	return s.Procurement.ListAccounts(ctx)
}

func (s *accountService) ApproveAccount(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ierr.NewError("account id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation)
	}

	s.Logger.WithContext(ctx).Infow("approving account", "account_id", accountID)

	return s.Procurement.ApproveAccount(ctx, accountID)
}

func (s *accountService) ResetAccount(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ierr.NewError("account id is required").
			WithHint("Account ID is required").
			Mark(ierr.ErrValidation)
	}

	s.Logger.WithContext(ctx).Infow("resetting account", "account_id", accountID)

	return s.Procurement.ResetAccount(ctx, accountID)
}
