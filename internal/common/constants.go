package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// requests to the reconciliation endpoint.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "
