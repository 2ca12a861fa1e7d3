package jobs

import (
	"context"
	"fmt"
	"log"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
)

func cleanup(d Deps) Func {
	return func(ctx context.Context, _ Event) (any, error) {
		cutoff := d.now().AddDate(0, -d.RetentionMonths, 0)
		deleted, err := db.DeleteInsightsUpdatedBefore(ctx, d.Pool, cutoff)
		if err != nil {
			return nil, fmt.Errorf("deleting stale insights: %w", err)
		}
		log.Printf("INFO: Removed %d insights last updated before %s", deleted, cutoff.Format("2006-01-02"))

		d.Cache.RevalidatePath(store.PathInsights)
		return map[string]any{"deleted": deleted}, nil
	}
}
