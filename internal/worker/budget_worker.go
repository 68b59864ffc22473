package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendfy/internal/amqp"
	"spendfy/internal/core"
	"spendfy/internal/log"
	"spendfy/internal/services"
	"spendfy/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the usage percentage that triggers an alert.
var DefaultThreshold = decimal.NewFromInt(80)

// Consumer delivers resource events to a handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// Alert describes a budget whose usage crossed the threshold.
type Alert struct {
	Usage    core.BudgetUsage
	Exceeded bool
}

// BudgetWorker re-evaluates budget usage when transactions change and
// periodically over all active budgets, logging an alert for each budget at
// or above the threshold.
type BudgetWorker struct {
	store     services.Store
	logger    *log.Logger
	threshold decimal.Decimal
	now       func() time.Time

	// OnAlert, when set, receives every alert after it is logged.
	OnAlert func(Alert)
}

func NewBudgetWorker(store services.Store, logger *log.Logger, threshold decimal.Decimal) *BudgetWorker {
	if threshold.IsZero() {
		threshold = DefaultThreshold
	}
	return &BudgetWorker{
		store:     store,
		logger:    logger.WithComponent(log.ComponentWorker),
		threshold: threshold,
		now:       time.Now,
	}
}

// HandleEvent evaluates the budgets covering a created or updated
// transaction. Other events are ignored, as is a transaction that no longer
// exists by the time the event arrives.
func (w *BudgetWorker) HandleEvent(ctx context.Context, evt amqp.ResourceEvent) error {
	if evt.Resource != amqp.ResourceTransaction || evt.Action == amqp.ActionDeleted {
		return nil
	}

	w.logger.DebugContext(ctx, "Processing transaction event",
		log.FieldResourceID, evt.ID,
		log.FieldUserID, evt.UserID,
		"action", evt.Action)

	var alerts []Alert
	err := w.store.InTx(ctx, func(q *storage.Queries) error {
		txn, err := q.GetTransaction(ctx, evt.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		if !core.IsExpense(txn.Type) {
			return nil
		}
		budgets, err := q.ListBudgetsCovering(ctx, txn.UserID, txn.CategoryID, txn.Date)
		if err != nil {
			return fmt.Errorf("list budgets covering transaction: %w", err)
		}
		alerts, err = w.evaluate(ctx, q, budgets)
		return err
	})
	if err != nil {
		return fmt.Errorf("handle transaction %d: %w", evt.ID, err)
	}
	w.report(ctx, alerts)
	return nil
}

// Sweep evaluates every budget whose period contains today.
func (w *BudgetWorker) Sweep(ctx context.Context) error {
	today := core.Date{Time: w.now().UTC().Truncate(24 * time.Hour)}

	var alerts []Alert
	var checked int
	err := w.store.InTx(ctx, func(q *storage.Queries) error {
		budgets, err := q.ListActiveBudgets(ctx, today)
		if err != nil {
			return fmt.Errorf("list active budgets: %w", err)
		}
		checked = len(budgets)
		alerts, err = w.evaluate(ctx, q, budgets)
		return err
	})
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Budget sweep completed",
		log.FieldOperation, log.OpSweep,
		"day", today.String(),
		"checked", checked,
		"alerts", len(alerts))
	w.report(ctx, alerts)
	return nil
}

func (w *BudgetWorker) evaluate(ctx context.Context, q *storage.Queries, budgets []core.Budget) ([]Alert, error) {
	var alerts []Alert
	for _, b := range budgets {
		usage, err := services.BudgetUsage(ctx, q, b)
		if err != nil {
			return nil, err
		}
		if usage.Exceeded || usage.Crossed(w.threshold) {
			alerts = append(alerts, Alert{Usage: usage, Exceeded: usage.Exceeded})
		}
	}
	return alerts, nil
}

func (w *BudgetWorker) report(ctx context.Context, alerts []Alert) {
	for _, a := range alerts {
		msg := "Budget threshold reached"
		if a.Exceeded {
			msg = "Budget exceeded"
		}
		w.logger.WarnContext(ctx, msg,
			log.FieldBudgetID, a.Usage.Budget.ID,
			log.FieldUserID, a.Usage.Budget.UserID,
			"category", a.Usage.Budget.CategoryName,
			log.FieldSpent, a.Usage.Spent.String(),
			log.FieldLimit, a.Usage.Budget.Limit.String(),
			log.FieldPercent, a.Usage.PercentUsed.String())
		if w.OnAlert != nil {
			w.OnAlert(a)
		}
	}
}

// Run consumes events and sweeps every interval until ctx is cancelled or
// either loop fails. A nil consumer runs the sweep alone.
func (w *BudgetWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.Consume(ctx, w.HandleEvent)
		})
	}

	g.Go(func() error {
		if err := w.Sweep(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Budget sweep failed", "error", err)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.Sweep(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Budget sweep failed", "error", err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
