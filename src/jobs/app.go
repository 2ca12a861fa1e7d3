package jobs

import (
	"time"

	"wealth-server/src/ai"
	store "wealth-server/src/db"
	"wealth-server/src/notify"
)

const (
	ProcessRecurringTransaction  = "process-recurring-transaction"
	TriggerRecurringTransactions = "trigger-recurring-transactions"
	GenerateMonthlyReports       = "generate-monthly-reports"
	CheckBudgetAlerts            = "check-budget-alerts"
	CleanupOldData               = "cleanup-old-data"

	EventRecurringProcess = "transaction.recurring.process"
)

// Deps are the services the application's jobs run against.
type Deps struct {
	Pool     store.DBTX
	Model    ai.Model
	Notifier notify.Notifier
	Cache    *store.PathCache

	AlertThreshold  int
	RetentionMonths int
	// RecurringLimit bounds concurrent recurring dispatches.
	RecurringLimit int

	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Register adds the application's jobs to r.
func Register(r *Registry, d Deps) error {
	if d.Notifier == nil {
		d.Notifier = notify.LogNotifier{}
	}
	if d.AlertThreshold <= 0 {
		d.AlertThreshold = 80
	}
	if d.RetentionMonths <= 0 {
		d.RetentionMonths = 24
	}
	if d.RecurringLimit <= 0 {
		d.RecurringLimit = 10
	}

	jobs := []Job{
		{
			Name:    ProcessRecurringTransaction,
			Trigger: Trigger{Event: EventRecurringProcess},
			Run:     processRecurring(d),
		},
		{
			Name:    TriggerRecurringTransactions,
			Trigger: Trigger{Cron: "0 0 * * *"},
			Run:     triggerRecurring(d, r),
		},
		{
			Name:    GenerateMonthlyReports,
			Trigger: Trigger{Cron: "0 0 1 * *"},
			Run:     monthlyReports(d),
		},
		{
			Name:    CheckBudgetAlerts,
			Trigger: Trigger{Cron: "0 */6 * * *"},
			Run:     budgetAlerts(d),
		},
		{
			Name:    CleanupOldData,
			Trigger: Trigger{Cron: "0 3 * * 0"},
			Run:     cleanup(d),
		},
	}
	for _, j := range jobs {
		if err := r.Register(j); err != nil {
			return err
		}
	}
	return nil
}
