package testutil

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
)

// InMemoryProcurementStore implements procurement.Client against in-memory
// maps. Mutating calls are recorded so tests can assert on side effects.
type InMemoryProcurementStore struct {
	mu sync.RWMutex

	accounts     map[string]*procurement.Account
	entitlements map[string]*procurement.Entitlement

	ApprovedAccounts     []string
	ResetAccounts        []string
	ApprovedEntitlements []string
	RejectedEntitlements map[string]string
	ApprovedPlanChanges  map[string]string

	// Err, when set, is returned by every call. Used to test error paths.
	Err error
}

// NewInMemoryProcurementStore creates a new in-memory procurement store.
func NewInMemoryProcurementStore() *InMemoryProcurementStore {
	return &InMemoryProcurementStore{
		accounts:             make(map[string]*procurement.Account),
		entitlements:         make(map[string]*procurement.Entitlement),
		RejectedEntitlements: make(map[string]string),
		ApprovedPlanChanges:  make(map[string]string),
	}
}

// SetAccount seeds an account keyed by its resource id.
func (s *InMemoryProcurementStore) SetAccount(account *procurement.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.ID()] = account
}

// SetEntitlement seeds an entitlement keyed by its id.
func (s *InMemoryProcurementStore) SetEntitlement(entitlement *procurement.Entitlement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entitlements[entitlement.ID] = entitlement
}

func (s *InMemoryProcurementStore) GetAccount(ctx context.Context, accountID string) (*procurement.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, ierr.NewError("account not found").
			WithHint("The requested resource does not exist in the procurement service").
			Mark(ierr.ErrNotFound)
	}

	return account, nil
}

func (s *InMemoryProcurementStore) ApproveAccount(ctx context.Context, accountID string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ApprovedAccounts = append(s.ApprovedAccounts, accountID)

	if account, ok := s.accounts[accountID]; ok {
		account.Approvals = []procurement.Approval{{
			Name:  procurement.ApprovalNameSignup,
			State: procurement.ApprovalStateApproved,
		}}
	}

	return nil
}

func (s *InMemoryProcurementStore) ResetAccount(ctx context.Context, accountID string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ResetAccounts = append(s.ResetAccounts, accountID)

	if account, ok := s.accounts[accountID]; ok {
		account.Approvals = nil
	}

	return nil
}

func (s *InMemoryProcurementStore) ListAccounts(ctx context.Context) ([]*procurement.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Values(s.accounts), nil
}

func (s *InMemoryProcurementStore) GetEntitlement(ctx context.Context, entitlementID string) (*procurement.Entitlement, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entitlement, ok := s.entitlements[entitlementID]
	if !ok {
		return nil, ierr.NewError("entitlement not found").
			WithHint("The requested resource does not exist in the procurement service").
			Mark(ierr.ErrNotFound)
	}

	return entitlement, nil
}

func (s *InMemoryProcurementStore) ApproveEntitlement(ctx context.Context, entitlementID string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ApprovedEntitlements = append(s.ApprovedEntitlements, entitlementID)

	if entitlement, ok := s.entitlements[entitlementID]; ok {
		entitlement.State = procurement.EntitlementStateActive
	}

	return nil
}

func (s *InMemoryProcurementStore) RejectEntitlement(ctx context.Context, entitlementID, reason string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.RejectedEntitlements[entitlementID] = reason

	return nil
}

func (s *InMemoryProcurementStore) ApprovePlanChange(ctx context.Context, entitlementID, pendingPlanName string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ApprovedPlanChanges[entitlementID] = pendingPlanName

	return nil
}

func (s *InMemoryProcurementStore) ListEntitlements(ctx context.Context, filter procurement.ListEntitlementsFilter) ([]*procurement.Entitlement, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*procurement.Entitlement

	for _, entitlement := range s.entitlements {
		if filter.State != "" && entitlement.State != filter.State {
			continue
		}

		if filter.AccountID != "" && entitlement.AccountID() != filter.AccountID {
			continue
		}

		result = append(result, entitlement)
	}

	return result, nil
}
