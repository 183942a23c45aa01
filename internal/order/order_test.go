package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

// stubRepo implements Repository in memory.
type stubRepo struct {
	prices map[string]decimal.Decimal
	orders map[int64]*Order
	items  map[int64]map[string]*ItemStatus
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		prices: map[string]decimal.Decimal{
			"Latte": decimal.RequireFromString("3.50"),
			"Bagel": decimal.RequireFromString("2.00"),
			"Mocha": decimal.RequireFromString("4.25"),
		},
		orders: map[int64]*Order{},
		items:  map[int64]map[string]*ItemStatus{},
	}
}

func (s *stubRepo) ItemPrice(_ context.Context, item string) (decimal.Decimal, error) {
	p, ok := s.prices[item]
	if !ok {
		return decimal.Zero, apperr.NotFoundf("menu item %q does not exist", item)
	}
	return p, nil
}

func (s *stubRepo) Create(_ context.Context, o *Order, items []string) error {
	s.nextID++
	o.ID = s.nextID
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = map[string]*ItemStatus{}
	for _, it := range items {
		s.items[o.ID][it] = &ItemStatus{OrderID: o.ID, ItemName: it, LastUpdated: o.ReceivedAt, Status: NotStarted}
	}
	return nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubRepo) Items(_ context.Context, id int64) ([]ItemStatus, error) {
	var out []ItemStatus
	for _, it := range s.items[id] {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (s *stubRepo) AddItem(_ context.Context, id int64, item string, price decimal.Decimal, at time.Time) error {
	s.items[id][item] = &ItemStatus{OrderID: id, ItemName: item, LastUpdated: at, Status: NotStarted}
	s.orders[id].Total = s.orders[id].Total.Add(price)
	return nil
}

func (s *stubRepo) RemoveItem(_ context.Context, id int64, item string, price decimal.Decimal) (bool, error) {
	if _, ok := s.items[id][item]; !ok {
		return false, ErrItemNotFound
	}
	delete(s.items[id], item)
	s.orders[id].Total = s.orders[id].Total.Sub(price)
	if len(s.items[id]) == 0 {
		delete(s.items, id)
		delete(s.orders, id)
		return true, nil
	}
	return false, nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	delete(s.orders, id)
	return true, nil
}

func (s *stubRepo) SetPaid(_ context.Context, id int64) (bool, error) {
	o := s.orders[id]
	if o.Paid {
		return false, nil
	}
	o.Paid = true
	return true, nil
}

func (s *stubRepo) SetItemStatus(_ context.Context, id int64, item string, st Status, at time.Time) error {
	it, ok := s.items[id][item]
	if !ok {
		return ErrItemNotFound
	}
	it.Status = st
	it.LastUpdated = at
	return nil
}

func (s *stubRepo) SetComment(_ context.Context, id int64, item, comment string) error {
	it, ok := s.items[id][item]
	if !ok {
		return ErrItemNotFound
	}
	it.Comment = comment
	return nil
}

func (s *stubRepo) ListRecentByUser(_ context.Context, login string, limit int) ([]Order, error) {
	var out []Order
	for _, o := range s.orders {
		if o.Login == login {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListUnpaidSince(_ context.Context, since time.Time) ([]Order, error) {
	var out []Order
	for _, o := range s.orders {
		if !o.Paid && !o.ReceivedAt.Before(since) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	ctx      = context.Background()
	alice    = auth.NewSession("alice", auth.Customer, "h")
	bob      = auth.NewSession("bob", auth.Customer, "h")
	employee = auth.NewSession("eve", auth.Employee, "h")
	manager  = auth.NewSession("mo", auth.Manager, "h")
)

func setup(t *testing.T) (*Service, *stubRepo, *clock) {
	t.Helper()
	repo := newStubRepo()
	clk := &clock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	return NewService(repo).WithClock(clk.now), repo, clk
}

func place(t *testing.T, svc *Service, sess auth.Session, items ...string) *Detail {
	t.Helper()
	d, err := svc.PlaceOrder(ctx, sess, items)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	return d
}

func TestPlaceOrderTotalsAndStatuses(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte", "Bagel")

	if d.Total.StringFixed(2) != "5.50" {
		t.Fatalf("total=%s", d.Total.StringFixed(2))
	}
	if len(repo.items[d.ID]) != 2 {
		t.Fatalf("items=%d", len(repo.items[d.ID]))
	}
	for _, it := range repo.items[d.ID] {
		if it.Status != NotStarted {
			t.Fatalf("status=%q", it.Status)
		}
	}
	if repo.orders[d.ID].Paid {
		t.Fatalf("new order must be unpaid")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, repo, _ := setup(t)
	if _, err := svc.PlaceOrder(ctx, alice, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty order: %v", err)
	}
	if _, err := svc.PlaceOrder(ctx, alice, []string{" ", ""}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank names: %v", err)
	}
	if _, err := svc.PlaceOrder(ctx, alice, []string{"Latte", "Unicorn"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown item: %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("failed placement stored an order")
	}

	d := place(t, svc, alice, "Latte", "Latte", "Bagel")
	if len(d.Items) != 2 || d.Total.StringFixed(2) != "5.50" {
		t.Fatalf("duplicates should be dropped: %+v", d)
	}
}

func TestRemoveItemsUntilOrderDisappears(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte", "Bagel")

	deleted, err := svc.RemoveItem(ctx, alice, d.ID, "Bagel")
	if err != nil || deleted {
		t.Fatalf("deleted=%v err=%v", deleted, err)
	}
	if got := repo.orders[d.ID].Total.StringFixed(2); got != "3.50" {
		t.Fatalf("total=%s", got)
	}
	if len(repo.items[d.ID]) != 1 {
		t.Fatalf("items=%d", len(repo.items[d.ID]))
	}

	deleted, err = svc.RemoveItem(ctx, alice, d.ID, "Latte")
	if err != nil || !deleted {
		t.Fatalf("deleted=%v err=%v", deleted, err)
	}
	if _, err := svc.GetOrder(ctx, alice, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("order should be gone: %v", err)
	}
}

func TestRemoveItemRules(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte", "Bagel")

	if _, err := svc.RemoveItem(ctx, bob, d.ID, "Latte"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other customer removed an item: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, alice, d.ID, "Mocha"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("item not in order: %v", err)
	}

	repo.orders[d.ID].Paid = true
	if _, err := svc.RemoveItem(ctx, alice, d.ID, "Latte"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("owner changed a paid order: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, employee, d.ID, "Latte"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("employee removed an item: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, manager, d.ID, "Latte"); err != nil {
		t.Fatalf("manager override: %v", err)
	}
}

func TestAddItem(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte")

	if err := svc.AddItem(ctx, alice, d.ID, "Latte"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("duplicate item: %v", err)
	}
	if err := svc.AddItem(ctx, alice, d.ID, "Mocha"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := repo.orders[d.ID].Total.StringFixed(2); got != "7.75" {
		t.Fatalf("total=%s", got)
	}

	// the increment uses the price at the time of adding
	repo.prices["Bagel"] = decimal.RequireFromString("2.40")
	if err := svc.AddItem(ctx, alice, d.ID, "Bagel"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := repo.orders[d.ID].Total.StringFixed(2); got != "10.15" {
		t.Fatalf("total=%s", got)
	}

	repo.orders[d.ID].Paid = true
	if err := svc.AddItem(ctx, manager, d.ID, "Unicorn"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("paid order accepted an item: %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte", "Bagel")

	if err := svc.CancelOrder(ctx, bob, d.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("bob cancelled alice's order: %v", err)
	}
	if err := svc.CancelOrder(ctx, alice, d.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := repo.orders[d.ID]; ok || repo.items[d.ID] != nil {
		t.Fatalf("order or items left behind")
	}
	if err := svc.CancelOrder(ctx, alice, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cancel twice: %v", err)
	}
}

func TestSetPaidTwice(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte")

	if _, err := svc.SetPaid(ctx, alice, d.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("customer paid: %v", err)
	}
	already, err := svc.SetPaid(ctx, employee, d.ID)
	if err != nil || already {
		t.Fatalf("first: already=%v err=%v", already, err)
	}
	already, err = svc.SetPaid(ctx, manager, d.ID)
	if err != nil || !already {
		t.Fatalf("second: already=%v err=%v", already, err)
	}
	if !repo.orders[d.ID].Paid {
		t.Fatalf("order not paid")
	}
	if _, err := svc.SetPaid(ctx, employee, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing order: %v", err)
	}
}

func TestSetItemStatusKeepsComment(t *testing.T) {
	svc, repo, clk := setup(t)
	d := place(t, svc, alice, "Latte")
	if err := svc.AddComment(ctx, alice, d.ID, "Latte", "extra hot"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	before := repo.items[d.ID]["Latte"].LastUpdated

	clk.advance(3 * time.Minute)
	if err := svc.SetItemStatus(ctx, alice, d.ID, "Latte", Finished); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("customer changed status: %v", err)
	}
	if err := svc.SetItemStatus(ctx, employee, d.ID, "Latte", Finished); err != nil {
		t.Fatalf("status: %v", err)
	}
	it := repo.items[d.ID]["Latte"]
	if it.Status != Finished || !it.LastUpdated.After(before) || it.Comment != "extra hot" {
		t.Fatalf("item=%+v", it)
	}

	repo.orders[d.ID].Paid = true
	if err := svc.SetItemStatus(ctx, employee, d.ID, "Latte", Started); err != nil {
		t.Fatalf("paid orders still take status changes: %v", err)
	}
	if err := svc.SetItemStatus(ctx, employee, d.ID, "Bagel", Started); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing item: %v", err)
	}
	if err := svc.SetItemStatus(ctx, employee, d.ID, "Latte", Status("Burnt")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad status: %v", err)
	}
}

func TestAddCommentRules(t *testing.T) {
	svc, repo, _ := setup(t)
	d := place(t, svc, alice, "Latte")

	if err := svc.AddComment(ctx, alice, d.ID, "Latte", strings.Repeat("x", 130)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("130-char comment accepted: %v", err)
	}
	if err := svc.AddComment(ctx, alice, d.ID, "Latte", strings.Repeat("x", 129)); err != nil {
		t.Fatalf("129-char comment rejected: %v", err)
	}
	if err := svc.AddComment(ctx, bob, d.ID, "Latte", "hi"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("bob commented on alice's order: %v", err)
	}
	repo.orders[d.ID].Paid = true
	if err := svc.AddComment(ctx, alice, d.ID, "Latte", "late"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("owner commented on paid order: %v", err)
	}
	if err := svc.AddComment(ctx, employee, d.ID, "Latte", "served"); err != nil {
		t.Fatalf("staff comment: %v", err)
	}
}

func TestListRecentOrders(t *testing.T) {
	svc, _, clk := setup(t)
	var ids []int64
	for i := 0; i < 7; i++ {
		ids = append(ids, place(t, svc, alice, "Latte").ID)
		clk.advance(time.Minute)
	}
	place(t, svc, bob, "Bagel")

	got, err := svc.ListRecentOrders(ctx, alice, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != RecentLimit {
		t.Fatalf("len=%d", len(got))
	}
	for i, o := range got {
		if o.ID != ids[len(ids)-1-i] {
			t.Fatalf("position %d has order %d", i, o.ID)
		}
	}

	if _, err := svc.ListRecentOrders(ctx, bob, "alice"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("bob read alice's history: %v", err)
	}
	if _, err := svc.ListRecentOrders(ctx, employee, "alice"); err != nil {
		t.Fatalf("staff lookup: %v", err)
	}
}

func TestListUnpaidRecentOrders(t *testing.T) {
	svc, repo, clk := setup(t)
	old := place(t, svc, alice, "Latte")
	clk.advance(20 * time.Hour)
	paid := place(t, svc, bob, "Bagel")
	repo.orders[paid.ID].Paid = true
	fresh := place(t, svc, bob, "Mocha")
	clk.advance(5 * time.Hour)

	if _, err := svc.ListUnpaidRecentOrders(ctx, employee); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("employee saw unpaid view: %v", err)
	}
	got, err := svc.ListUnpaidRecentOrders(ctx, manager)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("got=%+v (old=%d)", got, old.ID)
	}
}

func TestCart(t *testing.T) {
	var c Cart
	if !c.Add("Latte", decimal.RequireFromString("3.50")) {
		t.Fatalf("first add")
	}
	if c.Add("Latte", decimal.RequireFromString("3.50")) {
		t.Fatalf("duplicate add should be refused")
	}
	c.Add("Bagel", decimal.RequireFromString("2.00"))
	if c.Len() != 2 || c.Total().StringFixed(2) != "5.50" {
		t.Fatalf("len=%d total=%s", c.Len(), c.Total())
	}
	if !c.Remove("Latte") || c.Remove("Latte") {
		t.Fatalf("remove")
	}
	if strings.Join(c.Names(), ",") != "Bagel" {
		t.Fatalf("names=%v", c.Names())
	}
	if l := c.Lines(); len(l) != 1 || l[0].Price.StringFixed(2) != "2.00" {
		t.Fatalf("lines=%v", l)
	}
}

func TestParseStatus(t *testing.T) {
	if st, err := ParseStatus("hasn't started"); err != nil || st != NotStarted {
		t.Fatalf("st=%q err=%v", st, err)
	}
	if _, err := ParseStatus("done"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad status: %v", err)
	}
}
