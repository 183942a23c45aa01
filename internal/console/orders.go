package console

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/order"
)

// placeOrder builds a cart from the menu and stores it on confirmation.
// Nothing reaches the database before that.
func (c *Console) placeOrder(ctx context.Context, sess auth.Session) error {
	items, err := c.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		c.println("The menu is empty.")
		return nil
	}
	var cart order.Cart
	back := len(items) + 1
	for {
		c.println("")
		c.println("PLACE ORDER MENU")
		c.println("-----------")
		c.println("Current total: $" + cart.Total().StringFixed(2))
		c.println("Order:")
		for _, l := range cart.Lines() {
			c.printf("  %s $%s\n", l.Name, l.Price.StringFixed(2))
		}
		for i, it := range items {
			c.printf("%d. %s\n", i+1, it.Name)
		}
		c.println("---------")
		c.printf("%d. Back to main menu\n", back)
		if cart.Len() > 0 {
			c.printf("%d. Confirm order\n", back+1)
			c.printf("%d. Remove an item from the order\n", back+2)
		}
		c.println("//Select an item from above to add//")

		n, err := c.readChoice()
		if err != nil {
			return err
		}
		switch {
		case n == back:
			return nil
		case n == back+1 && cart.Len() > 0:
			ok, err := c.confirm("Confirm order for $"+cart.Total().StringFixed(2)+"?", "Confirm", "Go back")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			d, err := c.orders.PlaceOrder(ctx, sess, cart.Names())
			if err != nil {
				return err
			}
			c.printf("Order %d confirmed! Total: $%s\n", d.ID, d.Total.StringFixed(2))
			return nil
		case n == back+2 && cart.Len() > 0:
			name, ok, err := c.pick("REMOVE ITEM FROM ORDER", cart.Names())
			if err != nil {
				return err
			}
			if ok && cart.Remove(name) {
				c.println(name + " removed!")
			}
		case n >= 1 && n <= len(items):
			it := items[n-1]
			c.println("----------------------------------")
			c.println("ITEM: " + it.Name)
			c.println("PRICE: " + it.Price.StringFixed(2))
			ok, err := c.confirm("Would you like to add "+it.Name+" to your order?", "Add item", "Go back")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if cart.Add(it.Name, it.Price) {
				c.println(it.Name + " added!")
			} else {
				c.println(it.Name + " has already been added to your order")
			}
		default:
			c.println("Unrecognized choice!")
		}
	}
}

func (c *Console) ordersMenu(ctx context.Context, sess auth.Session) error {
	return c.loop(ctx, sess, "UPDATE ORDERS", "Back to main menu", c.ordersTable)
}

func (c *Console) ordersTable(sess auth.Session) []entry {
	t := []entry{
		{1, "Update your orders", c.updateOwnOrder},
		{2, "Order history", func(ctx context.Context, sess auth.Session) error {
			return c.history(ctx, sess, "")
		}},
	}
	if sess.IsStaff() {
		t = append(t,
			entry{3, "Update customer's order", c.updateCustomerOrder},
			entry{4, "Customer order history", func(ctx context.Context, sess auth.Session) error {
				login, _, err := c.askText(`Enter the customer's login, or "EXIT" to cancel`, 1, 50, false)
				if err != nil {
					return err
				}
				return c.history(ctx, sess, login)
			}},
		)
	}
	if sess.IsManager() {
		t = append(t, entry{5, "Unpaid orders of the last 24 hours", c.unpaid})
	}
	return t
}

func (c *Console) history(ctx context.Context, sess auth.Session, login string) error {
	c.println("")
	c.println("ORDERS:")
	c.println("-------------")
	n, err := c.reports.RecentOrders(ctx, c.out, sess, login)
	if err != nil {
		return err
	}
	if n == 0 {
		c.println("No orders yet.")
	}
	return nil
}

func (c *Console) unpaid(ctx context.Context, sess auth.Session) error {
	c.println("")
	c.println("UNPAID ORDERS:")
	c.println("-------------")
	n, err := c.reports.UnpaidOrders(ctx, c.out, sess)
	if err != nil {
		return err
	}
	if n == 0 {
		c.println("No unpaid orders in the last 24 hours.")
	}
	return nil
}

// askOrder reads an order id and loads the order. EXIT cancels.
func (c *Console) askOrder(ctx context.Context, sess auth.Session) (*order.Detail, error) {
	for {
		s, err := c.ask(`Enter the order ID, or "EXIT" to cancel`)
		if err != nil {
			return nil, err
		}
		if s == Exit {
			return nil, errCancel
		}
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || id <= 0 {
			c.println("Your input is invalid!")
			continue
		}
		return c.orders.GetOrder(ctx, sess, id)
	}
}

func (c *Console) printOrder(d *order.Detail) {
	c.println("")
	c.println("------------------")
	c.printf("ORDER %d\n", d.ID)
	c.println("- - - -")
	c.println("Customer: " + d.Login)
	c.printf("Paid: %t\n", d.Paid)
	c.println("Total: " + d.Total.StringFixed(2))
	c.println("- - - -")
	c.printf("Items in order %d:\n", d.ID)
	for i, it := range d.Items {
		c.printf("%d. %s\n", i+1, it.ItemName)
		c.println("    Last updated: " + it.LastUpdated.Local().Format("2006-01-02 15:04:05"))
		c.println("    Status: " + string(it.Status))
		c.println("    Comments: " + it.Comment)
		c.println("* * * * * * * * * * *")
	}
}

func itemNames(d *order.Detail) []string {
	out := make([]string, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.ItemName
	}
	return out
}

// errOrderGone leaves an order screen after the order was deleted.
var errOrderGone = errors.New("order no longer exists")

// orderScreen reloads the order before every choice so totals and item
// lists stay current.
func (c *Console) orderScreen(ctx context.Context, sess auth.Session, id int64, actions func(*order.Detail) []entry) error {
	for {
		d, err := c.orders.GetOrder(ctx, sess, id)
		if err != nil {
			return err
		}
		c.printOrder(d)
		err = c.loopOnce(ctx, sess, actions(d))
		switch {
		case errors.Is(err, errOrderGone):
			return nil
		case errors.Is(err, errBack):
			return nil
		case err != nil:
			return err
		}
	}
}

var errBack = errors.New("back")

// loopOnce shows entries, runs one choice and returns. The back key
// returns errBack.
func (c *Console) loopOnce(ctx context.Context, sess auth.Session, entries []entry) error {
	for _, e := range entries {
		c.printf("%d. %s\n", e.key, e.label)
	}
	c.println("-----")
	c.printf("%d. Go back\n", backKey)
	for {
		n, err := c.readChoice()
		if err != nil {
			return err
		}
		if n == backKey {
			return errBack
		}
		for _, e := range entries {
			if e.key == n {
				err := e.run(ctx, sess)
				if errors.Is(err, errOrderGone) {
					return err
				}
				return c.report(err)
			}
		}
		c.println("Unrecognized choice!")
	}
}

func (c *Console) updateOwnOrder(ctx context.Context, sess auth.Session) error {
	d, err := c.askOrder(ctx, sess)
	if err != nil {
		return err
	}
	if !sess.Owns(d.Login) && !sess.IsManager() {
		return apperr.Forbiddenf("order %d belongs to another customer", d.ID)
	}
	if d.Paid && !sess.IsManager() {
		c.printf("Order with ID '%d' is already paid for\n", d.ID)
		c.println("Cannot update order")
		return nil
	}
	return c.orderScreen(ctx, sess, d.ID, func(d *order.Detail) []entry {
		return []entry{
			{1, "Remove an item", func(ctx context.Context, sess auth.Session) error { return c.removeItem(ctx, sess, d) }},
			{2, "Add an item", func(ctx context.Context, sess auth.Session) error { return c.addToOrder(ctx, sess, d) }},
			{3, "Add comment to an item", func(ctx context.Context, sess auth.Session) error { return c.comment(ctx, sess, d) }},
			{4, "Cancel order", func(ctx context.Context, sess auth.Session) error { return c.cancel(ctx, sess, d) }},
		}
	})
}

func (c *Console) removeItem(ctx context.Context, sess auth.Session, d *order.Detail) error {
	item, ok, err := c.pick("REMOVE ITEM FROM ORDER", itemNames(d))
	if err != nil || !ok {
		return err
	}
	yes, err := c.confirm("Confirm removal of "+item+"?", "Yes, remove this item", "No, don't remove this item")
	if err != nil || !yes {
		return err
	}
	deleted, err := c.orders.RemoveItem(ctx, sess, d.ID, item)
	if err != nil {
		return err
	}
	c.printf("%s has been removed from order %d\n", item, d.ID)
	if deleted {
		c.printf("Cancelled order %d due to all items being removed\n", d.ID)
		return errOrderGone
	}
	return nil
}

func (c *Console) addToOrder(ctx context.Context, sess auth.Session, d *order.Detail) error {
	items, err := c.catalog.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	item, ok, err := c.pick("ADD ITEM TO ORDER", names)
	if err != nil || !ok {
		return err
	}
	if d.Has(item) {
		c.println(item + " has already been added to your order")
		return nil
	}
	price, err := c.orders.Quote(ctx, item)
	if err != nil {
		return err
	}
	yes, err := c.confirm("Would you like to add "+item+" ($"+price.StringFixed(2)+") to your order?", "Add item", "Go back")
	if err != nil || !yes {
		return err
	}
	if err := c.orders.AddItem(ctx, sess, d.ID, item); err != nil {
		return err
	}
	c.println(item + " added!")
	return nil
}

func (c *Console) comment(ctx context.Context, sess auth.Session, d *order.Detail) error {
	item, ok, err := c.pick("ADD COMMENT", itemNames(d))
	if err != nil || !ok {
		return err
	}
	var text string
	for {
		text, err = c.ask("Write your comment for " + item + ` (type EXIT to cancel):`)
		if err != nil {
			return err
		}
		if text == Exit {
			return errCancel
		}
		if utf8.RuneCountInString(text) <= order.MaxCommentLen {
			break
		}
		c.println("Comment is too long!")
	}
	if err := c.orders.AddComment(ctx, sess, d.ID, item, text); err != nil {
		return err
	}
	c.println("Comment to " + item + " has been added!")
	return nil
}

func (c *Console) cancel(ctx context.Context, sess auth.Session, d *order.Detail) error {
	yes, err := c.confirm("Confirm cancellation of order "+strconv.FormatInt(d.ID, 10)+"?", "Yes, cancel", "No, don't cancel")
	if err != nil || !yes {
		return err
	}
	if err := c.orders.CancelOrder(ctx, sess, d.ID); err != nil {
		return err
	}
	c.printf("Your order %d has been canceled\n", d.ID)
	return errOrderGone
}

func (c *Console) updateCustomerOrder(ctx context.Context, sess auth.Session) error {
	d, err := c.askOrder(ctx, sess)
	if err != nil {
		return err
	}
	return c.orderScreen(ctx, sess, d.ID, func(d *order.Detail) []entry {
		return []entry{
			{1, "Change order status (paid/unpaid)", func(ctx context.Context, sess auth.Session) error { return c.pay(ctx, sess, d) }},
			{2, "Change item status", func(ctx context.Context, sess auth.Session) error { return c.itemStatus(ctx, sess, d) }},
		}
	})
}

func (c *Console) pay(ctx context.Context, sess auth.Session, d *order.Detail) error {
	if d.Paid {
		c.println("Order is already paid for!")
		return nil
	}
	yes, err := c.confirm("Confirm changing order from unpaid to paid?", "Yes, order is paid", "No, order is still unpaid")
	if err != nil || !yes {
		return err
	}
	already, err := c.orders.SetPaid(ctx, sess, d.ID)
	if err != nil {
		return err
	}
	if already {
		c.println("Order is already paid for!")
		return nil
	}
	c.println("Order has been set to Paid!")
	return nil
}

func (c *Console) itemStatus(ctx context.Context, sess auth.Session, d *order.Detail) error {
	item, ok, err := c.pick("CHANGE ITEM STATUS", itemNames(d))
	if err != nil || !ok {
		return err
	}
	var current order.Status
	for _, it := range d.Items {
		if it.ItemName == item {
			current = it.Status
		}
	}
	c.printf("Change status of %s to which? (current status is %q)\n", item, current)
	for i, st := range order.Statuses {
		c.printf("%d. %s\n", i+1, st)
	}
	for {
		n, err := c.readChoice()
		if err != nil {
			return err
		}
		if n < 1 || n > len(order.Statuses) {
			c.println("Unrecognized choice!")
			continue
		}
		st := order.Statuses[n-1]
		if err := c.orders.SetItemStatus(ctx, sess, d.ID, item, st); err != nil {
			return err
		}
		c.printf("Status of %s set to %q\n", item, st)
		return nil
	}
}
