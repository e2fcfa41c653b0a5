package common

// Header names shared by the REST server and the dietctl client.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerScheme            = "Bearer"
)
