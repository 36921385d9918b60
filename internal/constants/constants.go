package constants

// ContextKeyUserID is the gin context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// ContextKeyTokenID is the gin context key holding the JWT ID of the presented credential.
const ContextKeyTokenID = "token_id"

// ContextKeyTokenExpiry is the gin context key holding the credential's expiry instant.
const ContextKeyTokenExpiry = "token_expiry"

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// MaxPageSize caps the limit parameter on list endpoints.
const MaxPageSize = 500
