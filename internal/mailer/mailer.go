// Package mailer sends transactional account emails. Delivery is
// best-effort: callers enqueue a send and never observe its outcome.
package mailer

import "context"

// Mailer is the external email collaborator. Both sends are best-effort and
// the returned error is only used for logging by the dispatcher.
type Mailer interface {
	// SendWelcome sends the post-signup greeting.
	SendWelcome(ctx context.Context, email, name string) error

	// SendCancellation sends the account-deletion goodbye.
	SendCancellation(ctx context.Context, email, name string) error
}
