package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
)

// RecurringData identifies the template a recurring event should process.
type RecurringData struct {
	TransactionID uuid.UUID `json:"transactionId"`
	UserID        uuid.UUID `json:"userId"`
}

func processRecurring(d Deps) Func {
	return func(ctx context.Context, ev Event) (any, error) {
		var data RecurringData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return nil, fmt.Errorf("decoding event data: %w", err)
		}
		if data.TransactionID == uuid.Nil || data.UserID == uuid.Nil {
			return nil, fmt.Errorf("missing required event data")
		}

		processed, err := finance.ProcessRecurring(ctx, d.Pool, data.UserID, data.TransactionID, d.now())
		if err != nil {
			return nil, err
		}
		if processed {
			d.Cache.RevalidatePath(store.PathDashboard)
			d.Cache.RevalidatePath(store.PathAccount)
		}
		return map[string]any{"processed": processed, "transactionId": data.TransactionID}, nil
	}
}

func triggerRecurring(d Deps, r *Registry) Func {
	return func(ctx context.Context, _ Event) (any, error) {
		due, err := db.GetDueRecurringTransactions(ctx, d.Pool, d.now())
		if err != nil {
			return nil, fmt.Errorf("loading recurring transactions: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.RecurringLimit)
		for _, t := range due {
			payload, err := json.Marshal(RecurringData{TransactionID: t.ID, UserID: t.UserID})
			if err != nil {
				return nil, err
			}
			g.Go(func() error {
				if _, err := r.Dispatch(gctx, Event{Name: EventRecurringProcess, Data: payload}); err != nil {
					log.Printf("ERROR: Failed to process recurring transaction %s: %v", t.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return map[string]any{"triggered": len(due)}, nil
	}
}
