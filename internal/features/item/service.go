package item

import (
	"context"
	"errors"
	"fmt"

	"supplier-portal/internal/session"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid subscription")
)

// ExpressionChecker validates custom subscription expressions before they are stored.
type ExpressionChecker interface {
	Check(expr string) error
}

type SubscribeRequest struct {
	Kind       SubscriptionKind `json:"kind" validate:"required,oneof=in_stock out_of_stock low_stock custom"`
	Threshold  float64          `json:"threshold" validate:"gte=0"`
	Expression string           `json:"expression"`
}

type ItemService interface {
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, int64, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	Subscribe(ctx context.Context, itemID int64, req SubscribeRequest) (*Subscription, error)
	Unsubscribe(ctx context.Context, id uint) error
}

type ItemServiceImpl struct {
	Items         ItemRepository
	Subscriptions SubscriptionRepository
	Checker       ExpressionChecker
}

func NewItemService(items ItemRepository, subs SubscriptionRepository, checker ExpressionChecker) ItemService {
	return &ItemServiceImpl{Items: items, Subscriptions: subs, Checker: checker}
}

func (s *ItemServiceImpl) ListItems(ctx context.Context, filter ItemFilter) ([]Item, int64, error) {
	return s.Items.List(ctx, filter)
}

func (s *ItemServiceImpl) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.Items.FindByID(ctx, id)
}

func (s *ItemServiceImpl) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.Subscriptions.ListForUser(ctx, sess.UserID)
}

func (s *ItemServiceImpl) Subscribe(ctx context.Context, itemID int64, req SubscribeRequest) (*Subscription, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
	if req.Kind == KindLowStock && req.Threshold <= 0 {
		return nil, fmt.Errorf("%w: low_stock needs a positive threshold", ErrInvalidRequest)
	}
	if req.Kind == KindCustom {
		if req.Expression == "" {
			return nil, fmt.Errorf("%w: custom needs an expression", ErrInvalidRequest)
		}
		if s.Checker != nil {
			if err := s.Checker.Check(req.Expression); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
		}
	}

	if _, err := s.Items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	sub := &Subscription{
		UserID:     sess.UserID,
		ItemID:     itemID,
		Kind:       req.Kind,
		Threshold:  req.Threshold,
		Expression: req.Expression,
		IsActive:   true,
	}
	if err := s.Subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ItemServiceImpl) Unsubscribe(ctx context.Context, id uint) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	sub, err := s.Subscriptions.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.UserID != sess.UserID {
		return ErrForbidden
	}
	return s.Subscriptions.Delete(ctx, id)
}
