package ports

import "context"

// OraclePort invokes the external type oracle binary once. A single
// invocation is an unreliable primitive: it may hang until the context
// is cancelled, fail to start, or exit non-zero. No retry logic lives
// behind this port.
type OraclePort interface {
	Invoke(ctx context.Context, args []string) (string, error)
}

// OracleInvokerPort is the resilient face of the oracle: one logical
// call that survives hung oracle processes by racing redundant
// attempts.
type OracleInvokerPort interface {
	Invoke(ctx context.Context, args []string) (string, error)
}
