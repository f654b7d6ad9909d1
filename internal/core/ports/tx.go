package ports

import "context"

// TxManager runs fn inside a single unit of work. Repository calls made with
// the ctx handed to fn participate in the transaction; any error returned by
// fn aborts it.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
