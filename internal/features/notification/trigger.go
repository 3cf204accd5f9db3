// Package notification fires stock alerts when synced item quantities change.
package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/metrics"

	"go.uber.org/zap"
)

// SubscriptionStore is the slice of the subscription repository the trigger needs.
// During sync it is bound to the open transaction.
type SubscriptionStore interface {
	ListActiveForItem(ctx context.Context, itemID int64) ([]item.Subscription, error)
	MarkNotified(ctx context.Context, id uint, at time.Time) error
}

type TemplateSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

type Trigger struct {
	Email   TemplateSender
	Teams   teams.Notifier
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewTrigger(email email_template.EmailTemplateService, notifier teams.Notifier, m *metrics.Metrics, logger *zap.Logger) *Trigger {
	return &Trigger{
		Email:   email,
		Teams:   notifier,
		Metrics: m,
		Logger:  logger,
		Now:     time.Now,
	}
}

// Evaluate checks every active subscription on the item and dispatches the
// ones whose predicate holds. A subscription is stamped only after its email
// went out. Only store errors are returned; dispatch failures are logged.
func (t *Trigger) Evaluate(ctx context.Context, store SubscriptionStore, it *item.Item, oldQty, newQty float64) (int, error) {
	subs, err := store.ListActiveForItem(ctx, it.ID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions for item %d: %w", it.ID, err)
	}

	fired := 0
	firedKinds := map[item.SubscriptionKind]int{}
	for _, sub := range subs {
		ok, err := ShouldFire(ctx, sub, oldQty, newQty)
		if err != nil {
			t.Logger.Warn("Skipping subscription with invalid predicate",
				zap.Uint("subscription_id", sub.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		vars := map[string]string{
			"item_name": it.Name,
			"sku":       it.SKU,
			"old_qty":   formatQty(oldQty),
			"new_qty":   formatQty(newQty),
			"threshold": formatQty(sub.Threshold),
			"kind":      string(sub.Kind),
		}
		err = t.Email.SendTemplate(ctx, []string{sub.SubscriberEmail}, email_template.TemplateItemPrefix+string(sub.Kind), vars)
		t.Metrics.NotificationSent(string(sub.Kind), err)
		if err != nil {
			t.Logger.Error("Failed to send stock notification",
				zap.Uint("subscription_id", sub.ID),
				zap.Int64("item_id", it.ID),
				zap.Error(err))
			continue
		}

		if err := store.MarkNotified(ctx, sub.ID, t.Now()); err != nil {
			return fired, err
		}
		fired++
		firedKinds[sub.Kind]++
	}

	for kind, n := range firedKinds {
		card := teams.NewCard(
			fmt.Sprintf("Stock alert: %s", it.Name),
			fmt.Sprintf("%s notification sent to %d subscriber(s)", kind, n),
			"0076D7",
			teams.Fact{Name: "SKU", Value: it.SKU},
			teams.Fact{Name: "Quantity", Value: formatQty(oldQty) + " → " + formatQty(newQty)},
		)
		if err := t.Teams.Post(ctx, teams.CategoryStock, card); err != nil {
			t.Logger.Warn("Failed to post stock card to Teams", zap.Error(err))
		}
	}

	return fired, nil
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
