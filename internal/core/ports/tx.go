package ports

import "context"

// TxRunner executes fn inside a single atomic unit. Every repository call made
// with the context passed to fn joins the same transaction; if fn returns an
// error the whole unit rolls back and no partial state is visible.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
