package migrations

import (
	"context"

	"github.com/anvahreal/ravgateway/db/models"
	"github.com/uptrace/bun"
)

/* This init reflects the latest model fields when run on a fresh db.
When adding/removing columns in subsequent migrations use IfNotExists/IfExists
so re-runs don't error. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().Model((*models.Merchant)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.APIKey)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Invoice)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.PendingPayment)(nil)).Exec(ctx); err != nil {
			return err
		}

		return nil
	}, nil)
}
