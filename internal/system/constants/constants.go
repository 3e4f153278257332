package constants

type ContextKey string

const (
	// ApiBasePath is the prefix under which all resolution endpoints are mounted.
	ApiBasePath = "/api/v1"

	// TraceIDContextKey carries the per-request trace id.
	TraceIDContextKey ContextKey = "traceId"
)

// Link precedence values carried on contact records. Advisory only: the
// identity group root, not this field, decides who is primary.
const (
	PrecedencePrimary   = "primary"
	PrecedenceSecondary = "secondary"
)

var AllowedPrecedenceValues = map[string]bool{
	PrecedencePrimary:   true,
	PrecedenceSecondary: true,
}

// Retry limits for operations that can lose a concurrency race.
const (
	MaxRetryAttempts = 5
	RetryDelayMillis = 100
)

// Lock key prefixes for the distributed lock providers.
const (
	GroupLockPrefix    = "lock:identity-group:"
	IdentityLockPrefix = "lock:identity:"
)

// Distributed lock providers.
const (
	LockProviderPostgres = "postgres"
	LockProviderMongo    = "mongo"
)
