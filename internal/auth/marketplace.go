package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/vendorgate/vendorgate/internal/config"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/logger"
)

// Verification failure causes. Every failure is additionally marked
// ierr.ErrPermissionDenied so the API layer uniformly returns 401.
var (
	ErrMissingToken  = errors.New("marketplace token missing")
	ErrUnknownIssuer = errors.New("marketplace token issuer is not trusted")
	ErrCertNotFound  = errors.New("signing certificate not found for key id")
	ErrInvalidToken  = errors.New("marketplace token failed verification")
	ErrEmptySubject  = errors.New("marketplace token subject is empty")
)

const certFetchTimeout = 5 * time.Second

// MarketplaceClaims is the verified identity asserted by a marketplace token.
type MarketplaceClaims struct {
	// Subject is the procurement account id the token was minted for.
	Subject string
	Claims  jwt.MapClaims
}

// MarketplaceVerifier validates inbound signed marketplace identity
// assertions: key lookup by kid, pinned issuer, RS256 signature, audience
// and expiry, non-empty subject.
type MarketplaceVerifier interface {
	Verify(ctx context.Context, rawToken string) (*MarketplaceClaims, error)
}

type marketplaceVerifier struct {
	certURL    string
	audience   string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewMarketplaceVerifier creates a verifier trusting the configured
// certificate-metadata URL and audience. Certificate fetches ride a
// retrying HTTP client with a short per-request timeout.
func NewMarketplaceVerifier(cfg *config.Configuration, log *logger.Logger) MarketplaceVerifier {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.HTTPClient.Timeout = certFetchTimeout
	retryClient.Logger = log.GetRetryableHTTPLogger()

	return &marketplaceVerifier{
		certURL:    cfg.Marketplace.EffectiveCertURL(),
		audience:   cfg.Marketplace.Audience,
		httpClient: retryClient.StandardClient(),
		logger:     log,
	}
}

func (v *marketplaceVerifier) Verify(ctx context.Context, rawToken string) (*MarketplaceClaims, error) {
	if rawToken == "" {
		return nil, ierr.WithError(ErrMissingToken).
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	// First pass: parse header and claims without trusting the signature,
	// only to learn the key id and the claimed issuer.
	unverified, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, ierr.WithError(errors.Mark(err, ErrInvalidToken)).
			WithHint("Invalid token format").
			Mark(ierr.ErrPermissionDenied)
	}

	keyID, _ := unverified.Header["kid"].(string)
	if keyID == "" {
		return nil, ierr.WithError(ErrInvalidToken).
			WithHint("Invalid token format").
			Mark(ierr.ErrPermissionDenied)
	}

	claims := unverified.Claims.(jwt.MapClaims)

	issuer, _ := claims["iss"].(string)
	if issuer != v.certURL {
		v.logger.Errorw("marketplace token issuer mismatch",
			"issuer", issuer,
			"expected", v.certURL,
		)

		return nil, ierr.WithError(ErrUnknownIssuer).
			WithHint("Invalid token issuer").
			Mark(ierr.ErrPermissionDenied)
	}

	publicKey, err := v.fetchSigningKey(ctx, keyID)
	if err != nil {
		return nil, err
	}

	// Second pass: full verification with the resolved key. Algorithm is
	// pinned to RS256; audience and expiry are enforced.
	verified, err := jwt.Parse(rawToken,
		func(token *jwt.Token) (interface{}, error) {
			return publicKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		v.logger.Errorw("marketplace token validation failed", "error", err)

		return nil, ierr.WithError(errors.Mark(err, ErrInvalidToken)).
			WithHint("Token validation failed").
			Mark(ierr.ErrPermissionDenied)
	}

	verifiedClaims := verified.Claims.(jwt.MapClaims)

	subject, _ := verifiedClaims["sub"].(string)
	if subject == "" {
		return nil, ierr.WithError(ErrEmptySubject).
			WithHint("Token subject is empty").
			Mark(ierr.ErrPermissionDenied)
	}

	return &MarketplaceClaims{
		Subject: subject,
		Claims:  verifiedClaims,
	}, nil
}

// fetchSigningKey retrieves the issuer's certificate set and extracts the
// RSA public key for the given key id.
func (v *marketplaceVerifier) fetchSigningKey(ctx context.Context, keyID string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certURL, nil)
	if err != nil {
		return nil, ierr.WithError(errors.Mark(err, ErrCertNotFound)).
			WithHint("Failed to verify token").
			Mark(ierr.ErrPermissionDenied)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Errorw("failed to fetch signing certificates", "error", err)

		return nil, ierr.WithError(errors.Mark(err, ErrCertNotFound)).
			WithHint("Failed to verify token").
			Mark(ierr.ErrPermissionDenied)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil, ierr.WithError(ErrCertNotFound).
			WithHint("Failed to verify token").
			Mark(ierr.ErrPermissionDenied)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, ierr.WithError(errors.Mark(err, ErrCertNotFound)).
			WithHint("Failed to verify token").
			Mark(ierr.ErrPermissionDenied)
	}

	certPEM, ok := certs[keyID]
	if !ok {
		v.logger.Errorw("signing certificate not found", "key_id", keyID)

		return nil, ierr.WithError(ErrCertNotFound).
			WithHint("Certificate not found").
			Mark(ierr.ErrPermissionDenied)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(certPEM))
	if err != nil {
		return nil, ierr.WithError(errors.Mark(err, ErrCertNotFound)).
			WithHint("Failed to verify token").
			Mark(ierr.ErrPermissionDenied)
	}

	return publicKey, nil
}
