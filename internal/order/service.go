// Package order implements the order lifecycle: placing an order, editing
// its items while it is unpaid, payment, per-item preparation status and
// the order history views.
package order

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

const (
	RecentLimit   = 5
	UnpaidWindow  = 24 * time.Hour
	MaxCommentLen = 129 // comments must stay under 130 characters
)

type Service struct {
	repo Repository
	now  func() time.Time
	log  *logrus.Entry
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, log: logrus.WithField("component", "order")}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) load(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Database("get order", err)
	}
	return o, nil
}

// canEdit: the owner while the order is unpaid, or a manager at any time.
func canEdit(sess auth.Session, o *Order) error {
	if sess.IsManager() {
		return nil
	}
	if !sess.Owns(o.Login) {
		return apperr.Forbiddenf("order %d belongs to another customer", o.ID)
	}
	if o.Paid {
		return apperr.Validationf("order %d is already paid and can no longer be changed", o.ID)
	}
	return nil
}

func requireStaff(sess auth.Session) error {
	if !sess.IsStaff() {
		return apperr.Forbiddenf("only employees and managers can do this")
	}
	return nil
}

// Quote returns the current catalog price of item.
func (s *Service) Quote(ctx context.Context, item string) (decimal.Decimal, error) {
	p, err := s.repo.ItemPrice(ctx, strings.TrimSpace(item))
	if err != nil {
		return decimal.Zero, apperr.Database("item price", err)
	}
	return p, nil
}

// PlaceOrder stores a new unpaid order for the session's user. Duplicate
// names are dropped; prices are read from the menu at this moment.
func (s *Service) PlaceOrder(ctx context.Context, sess auth.Session, items []string) (*Detail, error) {
	var names []string
	seen := map[string]bool{}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		names = append(names, it)
	}
	if len(names) == 0 {
		return nil, apperr.Validationf("an order needs at least one item")
	}

	total := decimal.Zero
	for _, n := range names {
		p, err := s.Quote(ctx, n)
		if err != nil {
			return nil, err
		}
		total = total.Add(p)
	}

	now := s.now().UTC()
	o := &Order{Login: sess.Login, ReceivedAt: now, Total: total}
	if err := s.repo.Create(ctx, o, names); err != nil {
		return nil, apperr.Database("place order", err)
	}
	d := &Detail{Order: *o}
	for _, n := range names {
		d.Items = append(d.Items, ItemStatus{OrderID: o.ID, ItemName: n, LastUpdated: now, Status: NotStarted})
	}
	s.log.WithFields(logrus.Fields{"order_id": o.ID, "login": sess.Login, "items": len(names), "total": total.StringFixed(2)}).Info("order placed")
	return d, nil
}

// GetOrder returns an order with its items to its owner or to staff.
func (s *Service) GetOrder(ctx context.Context, sess auth.Session, id int64) (*Detail, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Owns(o.Login) && !sess.IsStaff() {
		return nil, apperr.Forbiddenf("order %d belongs to another customer", id)
	}
	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, apperr.Database("order items", err)
	}
	return &Detail{Order: *o, Items: items}, nil
}

// AddItem adds one item to an unpaid order and raises the total by its
// current price.
func (s *Service) AddItem(ctx context.Context, sess auth.Session, id int64, item string) error {
	item = strings.TrimSpace(item)
	d, err := s.GetOrder(ctx, sess, id)
	if err != nil {
		return err
	}
	if d.Paid {
		return apperr.Validationf("order %d is already paid and can no longer be changed", id)
	}
	if err := canEdit(sess, &d.Order); err != nil {
		return err
	}
	if d.Has(item) {
		return apperr.Validationf("%q is already in order %d", item, id)
	}
	price, err := s.Quote(ctx, item)
	if err != nil {
		return err
	}
	if err := s.repo.AddItem(ctx, id, item, price, s.now().UTC()); err != nil {
		return apperr.Database("add item", err)
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "item": item, "by": sess.Login}).Info("item added")
	return nil
}

// RemoveItem takes one item out of an order. orderDeleted is true when it
// was the last item and the order no longer exists.
func (s *Service) RemoveItem(ctx context.Context, sess auth.Session, id int64, item string) (orderDeleted bool, err error) {
	item = strings.TrimSpace(item)
	d, err := s.GetOrder(ctx, sess, id)
	if err != nil {
		return false, err
	}
	if err := canEdit(sess, &d.Order); err != nil {
		return false, err
	}
	if !d.Has(item) {
		return false, apperr.NotFoundf("%q is not part of order %d", item, id)
	}
	price, err := s.Quote(ctx, item)
	if err != nil {
		return false, err
	}
	deleted, err := s.repo.RemoveItem(ctx, id, item, price)
	if err != nil {
		return false, apperr.Database("remove item", err)
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "item": item, "by": sess.Login, "order_deleted": deleted}).Info("item removed")
	return deleted, nil
}

// AddComment overwrites the comment of one item. Owners may comment while
// the order is unpaid; staff at any time.
func (s *Service) AddComment(ctx context.Context, sess auth.Session, id int64, item, text string) error {
	item = strings.TrimSpace(item)
	if utf8.RuneCountInString(text) > MaxCommentLen {
		return apperr.Validationf("comment must be under 130 characters")
	}
	d, err := s.GetOrder(ctx, sess, id)
	if err != nil {
		return err
	}
	if !sess.IsStaff() {
		if err := canEdit(sess, &d.Order); err != nil {
			return err
		}
	}
	if !d.Has(item) {
		return apperr.NotFoundf("%q is not part of order %d", item, id)
	}
	if err := s.repo.SetComment(ctx, id, item, text); err != nil {
		return apperr.Database("set comment", err)
	}
	return nil
}

// CancelOrder deletes the order and all its items.
func (s *Service) CancelOrder(ctx context.Context, sess auth.Session, id int64) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := canEdit(sess, o); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Database("cancel order", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "by": sess.Login}).Info("order cancelled")
	return nil
}

// SetPaid marks an order as paid. Paying twice is not an error;
// alreadyPaid tells the caller nothing changed.
func (s *Service) SetPaid(ctx context.Context, sess auth.Session, id int64) (alreadyPaid bool, err error) {
	if err := requireStaff(sess); err != nil {
		return false, err
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if o.Paid {
		return true, nil
	}
	changed, err := s.repo.SetPaid(ctx, id)
	if err != nil {
		return false, apperr.Database("set paid", err)
	}
	if changed {
		s.log.WithFields(logrus.Fields{"order_id": id, "by": sess.Login}).Info("order paid")
	}
	return !changed, nil
}

// SetItemStatus overwrites the status and timestamp of one item regardless
// of whether the order is paid. The comment is left alone.
func (s *Service) SetItemStatus(ctx context.Context, sess auth.Session, id int64, item string, st Status) error {
	if err := requireStaff(sess); err != nil {
		return err
	}
	st, err := ParseStatus(string(st))
	if err != nil {
		return err
	}
	item = strings.TrimSpace(item)
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetItemStatus(ctx, id, item, st, s.now().UTC()); err != nil {
		return apperr.Database("set item status", err)
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "item": item, "status": st, "by": sess.Login}).Info("item status changed")
	return nil
}

// ListRecentOrders returns the five latest orders of login, newest first.
// Users see their own history; staff may look up any customer.
func (s *Service) ListRecentOrders(ctx context.Context, sess auth.Session, login string) ([]Order, error) {
	if login == "" {
		login = sess.Login
	}
	if !sess.Owns(login) && !sess.IsStaff() {
		return nil, apperr.Forbiddenf("you can only see your own orders")
	}
	out, err := s.repo.ListRecentByUser(ctx, login, RecentLimit)
	return out, apperr.Database("recent orders", err)
}

// ListUnpaidRecentOrders is the manager view of unpaid orders from every
// customer received in the last 24 hours.
func (s *Service) ListUnpaidRecentOrders(ctx context.Context, sess auth.Session) ([]Order, error) {
	if !sess.IsManager() {
		return nil, apperr.Forbiddenf("only managers can see unpaid orders")
	}
	out, err := s.repo.ListUnpaidSince(ctx, s.now().UTC().Add(-UnpaidWindow))
	return out, apperr.Database("unpaid orders", err)
}
