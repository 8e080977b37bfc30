// Package commands contains business operations that modify order state.
// Every command is built through its constructor, validated by its handler,
// and committed through the record store so that activity log synthesis and
// mirror propagation are never bypassed.
package commands

import (
	"context"

	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/core/domain/model/promo"
)

type (
	// RecordStore is the sanctioned order mutation path.
	RecordStore interface {
		Get(ctx context.Context, id int64) (*order.Order, error)
		Create(ctx context.Context, id int64, fields order.Fields, opts ...recordstore.Option) (*order.Order, error)
		Apply(ctx context.Context, id int64, fields order.Fields, opts ...recordstore.Option) (*order.Order, error)
		Mutate(ctx context.Context, id int64, fn recordstore.MutateFunc, opts ...recordstore.Option) (*order.Order, error)
	}

	// SequenceAllocator hands out order numbers, profile slots, promo uses
	// and print job folders.
	SequenceAllocator interface {
		Next(ctx context.Context, counterID string) (int64, error)
		NextInRing(ctx context.Context, counterID string, size int) (int, error)
		RedeemPromo(ctx context.Context, code string, orderID int64, pref order.ShippingPreference) (promo.Redemption, error)
		ReleasePromo(ctx context.Context, code string, orderID int64) error
		NextPrintJob(ctx context.Context, orderIDs []int64) (printjob.PrintJob, error)
	}
)

var (
	_ RecordStore       = &recordstore.Store{}
	_ SequenceAllocator = &sequence.Allocator{}
)
