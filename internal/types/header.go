package types

const (
	HeaderRequestID = "X-Request-ID"

	// FormFieldMarketplaceToken is the form field carrying the signed
	// marketplace identity assertion during the signup redirect.
	FormFieldMarketplaceToken = "x-gcp-marketplace-token"
)
