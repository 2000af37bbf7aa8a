package procurement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
)

const defaultBaseURL = "https://cloudcommerceprocurement.googleapis.com/v1"

// Client implements procurement.Client against the procurement REST API.
// It is stateless apart from the shared resilience policy and is safe for
// concurrent use by many handler goroutines.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
	resilience *resilientCaller
	logger     *logger.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the procurement API endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient injects the HTTP client. The caller is expected to supply
// a transport carrying platform credentials.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithResilience overrides the retry/rate-limit policy. Used in tests to
// avoid real backoff delays.
func WithResilience(r *resilientCaller) Option {
	return func(c *Client) {
		c.resilience = r
	}
}

// NewClient creates a procurement client for the configured provider project.
func NewClient(cfg *config.Configuration, log *logger.Logger, opts ...Option) procurement.Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		projectID: cfg.Marketplace.ProjectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		resilience: newResilientCaller(),
		logger:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AccountName builds the providers/{project}/accounts/{id} resource name.
func (c *Client) AccountName(accountID string) string {
	return fmt.Sprintf("providers/%s/accounts/%s", c.projectID, accountID)
}

// EntitlementName builds the providers/{project}/entitlements/{id} resource name.
func (c *Client) EntitlementName(entitlementID string) string {
	return fmt.Sprintf("providers/%s/entitlements/%s", c.projectID, entitlementID)
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*procurement.Account, error) {
	c.logger.Debugw("procurement get account", "account_id", accountID)

	var account procurement.Account
	if err := c.call(ctx, http.MethodGet, "/"+c.AccountName(accountID), nil, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (c *Client) ApproveAccount(ctx context.Context, accountID string) error {
	c.logger.Debugw("procurement approve account", "account_id", accountID)

	payload := map[string]interface{}{
		"approvalName": string(procurement.ApprovalNameSignup),
	}

	return c.call(ctx, http.MethodPost, "/"+c.AccountName(accountID)+":approve", payload, nil)
}

func (c *Client) ResetAccount(ctx context.Context, accountID string) error {
	c.logger.Debugw("procurement reset account", "account_id", accountID)

	return c.call(ctx, http.MethodPost, "/"+c.AccountName(accountID)+":reset", map[string]interface{}{}, nil)
}

func (c *Client) ListAccounts(ctx context.Context) ([]*procurement.Account, error) {
	var response struct {
		Accounts []*procurement.Account `json:"accounts"`
	}

	path := fmt.Sprintf("/providers/%s/accounts", c.projectID)
	if err := c.call(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}

	return response.Accounts, nil
}

func (c *Client) GetEntitlement(ctx context.Context, entitlementID string) (*procurement.Entitlement, error) {
	c.logger.Debugw("procurement get entitlement", "entitlement_id", entitlementID)

	var entitlement procurement.Entitlement
	if err := c.call(ctx, http.MethodGet, "/"+c.EntitlementName(entitlementID), nil, &entitlement); err != nil {
		return nil, err
	}

	entitlement.ID = entitlementID

	return &entitlement, nil
}

func (c *Client) ApproveEntitlement(ctx context.Context, entitlementID string) error {
	c.logger.Debugw("procurement approve entitlement", "entitlement_id", entitlementID)

	return c.call(ctx, http.MethodPost, "/"+c.EntitlementName(entitlementID)+":approve", map[string]interface{}{}, nil)
}

func (c *Client) RejectEntitlement(ctx context.Context, entitlementID, reason string) error {
	c.logger.Debugw("procurement reject entitlement", "entitlement_id", entitlementID, "reason", reason)

	payload := map[string]interface{}{
		"reason": reason,
	}

	return c.call(ctx, http.MethodPost, "/"+c.EntitlementName(entitlementID)+":reject", payload, nil)
}

func (c *Client) ApprovePlanChange(ctx context.Context, entitlementID, pendingPlanName string) error {
	c.logger.Debugw("procurement approve plan change",
		"entitlement_id", entitlementID,
		"pending_plan", pendingPlanName,
	)

	payload := map[string]interface{}{
		"pendingPlanName": pendingPlanName,
	}

	return c.call(ctx, http.MethodPost, "/"+c.EntitlementName(entitlementID)+":approvePlanChange", payload, nil)
}

func (c *Client) ListEntitlements(ctx context.Context, filter procurement.ListEntitlementsFilter) ([]*procurement.Entitlement, error) {
	path := fmt.Sprintf("/providers/%s/entitlements", c.projectID)

	if expr := BuildFilter(filter); expr != "" {
		path = path + "?filter=" + url.QueryEscape(expr)
	}

	var response struct {
		Entitlements []*procurement.Entitlement `json:"entitlements"`
	}

	if err := c.call(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}

	for _, entitlement := range response.Entitlements {
		entitlement.ID = procurement.ExtractResourceID(entitlement.Name)
	}

	return response.Entitlements, nil
}

// BuildFilter renders the remote filter expression. The procurement list
// grammar joins clauses with a single space: "state=X account=Y".
func BuildFilter(filter procurement.ListEntitlementsFilter) string {
	var clauses []string

	if filter.State != "" {
		clauses = append(clauses, fmt.Sprintf("state=%s", filter.State.FilterValue()))
	}

	if filter.AccountID != "" {
		clauses = append(clauses, fmt.Sprintf("account=%s", filter.AccountID))
	}

	return strings.Join(clauses, " ")
}

// call issues a single logical API call through the shared resilience
// policy: token-bucket rate limiting plus exponential-backoff retry on
// transient failures.
func (c *Client) call(ctx context.Context, method, path string, payload, out interface{}) error {
	return c.resilience.Call(ctx, func() error {
		return c.doRequest(ctx, method, path, payload, out)
	})
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader

	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return permanent(ierr.WithError(err).
				WithHint("Failed to marshal procurement request").
				Mark(ierr.ErrInternal))
		}

		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return permanent(ierr.WithError(err).
			WithHint("Failed to build procurement request").
			Mark(ierr.ErrInternal))
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection/TLS level failures are transient and retried.
		return ierr.WithError(err).
			WithHint("Procurement service unreachable").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read procurement response").
			Mark(ierr.ErrHTTPClient)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil && len(respBytes) > 0 {
			if err := json.Unmarshal(respBytes, out); err != nil {
				return permanent(ierr.WithError(err).
					WithHint("Failed to decode procurement response").
					Mark(ierr.ErrInternal))
			}
		}

		return nil

	case resp.StatusCode == http.StatusNotFound:
		return permanent(ierr.NewError("procurement resource not found").
			WithHint("The requested resource does not exist in the procurement service").
			WithReportableDetails(map[string]interface{}{
				"path":   path,
				"status": resp.StatusCode,
			}).
			Mark(ierr.ErrNotFound))

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		// Transient; the resilient caller retries with backoff.
		return ierr.NewErrorf("procurement api returned status %d", resp.StatusCode).
			WithHint("Procurement service temporarily unavailable").
			WithReportableDetails(map[string]interface{}{
				"path":   path,
				"status": resp.StatusCode,
				"body":   string(respBytes),
			}).
			Mark(ierr.ErrHTTPClient)

	default:
		return permanent(ierr.NewErrorf("procurement api returned status %d", resp.StatusCode).
			WithHint("Procurement request rejected").
			WithReportableDetails(map[string]interface{}{
				"path":   path,
				"status": resp.StatusCode,
				"body":   string(respBytes),
			}).
			Mark(ierr.ErrHTTPClient))
	}
}
