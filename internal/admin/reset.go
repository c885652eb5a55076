// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"time"

	db "github.com/JonMunkholm/salesimport/internal/database"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// ResetDbs handles database reset operations.
type ResetDbs struct {
	DB *db.Queries
	// KeepCategoryID survives the reset so later imports still have a
	// fallback category.
	KeepCategoryID int64
}

type dbReset struct {
	name string
	fn   func(ctx context.Context) error
}

// ResetAll deletes every imported sale, customer, product and category.
// This is a destructive operation - use with caution.
func (r *ResetDbs) ResetAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	return r.runResets(ctx, []dbReset{
		{"sale_items", r.DB.ResetSaleItems},
		{"sales", r.DB.ResetSales},
		{"customers", r.DB.ResetCustomers},
		{"products", r.DB.ResetProducts},
		{"categories", func(ctx context.Context) error {
			return r.DB.ResetCategories(ctx, r.KeepCategoryID)
		}},
	})
}

func (r *ResetDbs) runResets(ctx context.Context, resets []dbReset) error {
	for _, reset := range resets {
		if err := reset.fn(ctx); err != nil {
			return fmt.Errorf("reset %s: %w", reset.name, err)
		}
	}
	return nil
}
