package orders

import "context"

// Tx is the set of operations checkout performs inside one unit of work.
type Tx interface {
	// ListCartLines returns the user's lines joined with their product, ordered by product id.
	ListCartLines(ctx context.Context, userID string) ([]CartLine, error)
	// ProductStock reads the current stock and holds the row until the unit of work ends.
	ProductStock(ctx context.Context, productID string) (int, error)
	// DecrementStock returns ErrStockUnderflow instead of letting stock go negative.
	DecrementStock(ctx context.Context, productID string, qty int) error
	CreateOrder(ctx context.Context, o NewOrder) (Order, error)
	DeleteCartLines(ctx context.Context, userID string) error
}

// Store runs fn as one atomic unit: every Tx call commits together or not at all. Failures to
// begin or commit come back as a *TransactionError with Op "begin" or "commit".
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
