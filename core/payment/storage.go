package payment

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments
		(payment_id, order_id, signature, created_at)
	VALUES
		($1, $2, $3, $4)`

	_, err := db.ExecContext(ctx, q, p.PaymentID, p.OrderID, p.Signature, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting payment record: %w", err)
	}

	return nil
}
