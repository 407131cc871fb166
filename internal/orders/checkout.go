package orders

import (
	"context"
	"errors"
)

type Service struct {
	Store Store
}

// Checkout turns every cart line of userID into a pending order, decrements stock and empties the
// cart. Either all of that commits or none of it does.
//
// Errors: ErrEmptyCart, *InsufficientStockError, or *TransactionError for store failures.
func (s *Service) Checkout(ctx context.Context, userID string) (Result, error) {
	var res Result
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		lines, err := tx.ListCartLines(ctx, userID)
		if err != nil {
			return &TransactionError{Op: "list cart lines", Err: err}
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		created := make([]Order, 0, len(lines))
		var total int64
		for _, l := range lines {
			// stock is re-read under the row lock; the snapshot on the line may be stale
			stock, err := tx.ProductStock(ctx, l.ProductID)
			if err != nil {
				return &TransactionError{Op: "read stock", Err: err}
			}
			if stock < l.Qty {
				return &InsufficientStockError{
					ProductID: l.ProductID, ProductName: l.Product.Name,
					Requested: l.Qty, Available: stock,
				}
			}

			o, err := tx.CreateOrder(ctx, NewOrder{
				UserID:     userID,
				ProductID:  l.ProductID,
				Qty:        l.Qty,
				TotalCents: l.TotalCents,
				Status:     StatusPending,
			})
			if err != nil {
				return &TransactionError{Op: "create order", Err: err}
			}

			if err := tx.DecrementStock(ctx, l.ProductID, l.Qty); err != nil {
				if errors.Is(err, ErrStockUnderflow) {
					return &InsufficientStockError{
						ProductID: l.ProductID, ProductName: l.Product.Name,
						Requested: l.Qty, Available: stock,
					}
				}
				return &TransactionError{Op: "decrement stock", Err: err}
			}

			created = append(created, o)
			total += o.TotalCents
		}

		if err := tx.DeleteCartLines(ctx, userID); err != nil {
			return &TransactionError{Op: "clear cart", Err: err}
		}
		res = Result{Orders: created, TotalAmount: total}
		return nil
	})
	if err != nil {
		return Result{}, classify(err)
	}
	return res, nil
}

// classify keeps typed checkout errors as they are and wraps anything else as a TransactionError.
func classify(err error) error {
	var stockErr *InsufficientStockError
	var txErr *TransactionError
	switch {
	case errors.Is(err, ErrEmptyCart), errors.As(err, &stockErr), errors.As(err, &txErr):
		return err
	default:
		return &TransactionError{Op: "transaction", Err: err}
	}
}
