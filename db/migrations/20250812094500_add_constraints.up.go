package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- an invoice amount is always positive
				ALTER TABLE invoices
				ADD CONSTRAINT check_positive_amount
				CHECK (amount_cents > 0);

			-- a settled invoice carries its settlement proof: tx_hash and paid_at
			-- are set together or not at all
				ALTER TABLE invoices
				ADD CONSTRAINT check_settlement_complete
				CHECK (
					(status = 'paid' AND tx_hash IS NOT NULL AND paid_at IS NOT NULL)
					OR
					(status <> 'paid' AND tx_hash IS NULL AND paid_at IS NULL)
				);

			-- one settlement row per transaction hash and invoice
				CREATE UNIQUE INDEX pending_payments_invoice_tx_idx
				ON pending_payments (invoice_id, tx_hash);
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
