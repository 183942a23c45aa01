package console

import (
	"context"
	"fmt"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/menu"
)

func (c *Console) catalogMenu(ctx context.Context, sess auth.Session) error {
	return c.loop(ctx, sess, "SEARCH MENU", "Back to main menu", c.catalogTable)
}

func (c *Console) catalogTable(sess auth.Session) []entry {
	t := []entry{
		{1, "Search item by name", c.searchByName},
		{2, "Search item by type", c.searchByType},
		{3, "Show the whole menu", c.showMenu},
	}
	if sess.IsManager() {
		t = append(t,
			entry{4, "Add item", c.addItem},
			entry{5, "Update item", c.updateItem},
			entry{6, "Delete item", c.deleteItem},
			entry{7, "Change type of items", c.changeType},
		)
	}
	return t
}

func (c *Console) printItems(items []menu.Item) {
	if len(items) == 0 {
		c.println("No items found.")
		return
	}
	for _, it := range items {
		c.println("------------------------------------------------------------------------------")
		c.println("Item Name: " + it.Name)
		c.println("Type: " + it.Type)
		c.println("Price: " + it.Price.StringFixed(2))
		c.println("Description: " + it.Description)
		c.println("Image URL: " + it.ImageURL)
	}
}

func (c *Console) searchByName(ctx context.Context, _ auth.Session) error {
	name, _, err := c.askText(fmt.Sprintf("Enter name of item to search (at most %d characters):", menu.MaxNameLen), 0, menu.MaxNameLen, false)
	if err != nil {
		return err
	}
	items, err := c.catalog.SearchByName(ctx, name)
	if err != nil {
		return err
	}
	c.printItems(items)
	return nil
}

func (c *Console) searchByType(ctx context.Context, _ auth.Session) error {
	typ, _, err := c.askText(fmt.Sprintf("Enter type of item to search (at most %d characters):", menu.MaxTypeLen), 0, menu.MaxTypeLen, false)
	if err != nil {
		return err
	}
	items, err := c.catalog.SearchByType(ctx, typ)
	if err != nil {
		return err
	}
	c.printItems(items)
	return nil
}

func (c *Console) showMenu(ctx context.Context, _ auth.Session) error {
	items, err := c.catalog.List(ctx)
	if err != nil {
		return err
	}
	c.printItems(items)
	return nil
}

func (c *Console) addItem(ctx context.Context, sess auth.Session) error {
	var it menu.Item
	var err error
	if it.Name, _, err = c.askText(fmt.Sprintf("Enter name of item to insert, at most %d characters (type EXIT to cancel)", menu.MaxNameLen), 1, menu.MaxNameLen, false); err != nil {
		return err
	}
	if it.Type, _, err = c.askText(fmt.Sprintf("Enter type of item to insert, at most %d characters (type EXIT to cancel)", menu.MaxTypeLen), 1, menu.MaxTypeLen, false); err != nil {
		return err
	}
	price, err := c.askPrice("Enter price of item to insert (type -1 to cancel)", false)
	if err != nil {
		return err
	}
	it.Price = *price
	desc, err := c.askOptional(fmt.Sprintf("Enter description, type NONE or hit enter for no description (at most %d characters)", menu.MaxDescriptionLen), menu.MaxDescriptionLen, false)
	if err != nil {
		return err
	}
	it.Description = *desc
	img, err := c.askOptional(fmt.Sprintf("Enter image URL, type NONE or hit enter for no image URL (at most %d characters)", menu.MaxImageURLLen), menu.MaxImageURLLen, false)
	if err != nil {
		return err
	}
	it.ImageURL = *img

	created, err := c.catalog.CreateItem(ctx, sess, it, true)
	if err != nil {
		return err
	}
	c.printf("%s has been added to the menu!\n", created.Name)
	return nil
}

func (c *Console) updateItem(ctx context.Context, sess auth.Session) error {
	name, _, err := c.askText("Enter name of item to update (type EXIT to cancel)", 1, menu.MaxNameLen, false)
	if err != nil {
		return err
	}
	if _, err := c.catalog.Get(ctx, name); err != nil {
		return err
	}

	var u menu.ItemUpdate
	v, skipped, err := c.askText(`Enter "SKIP" to keep the item name, or a new name (type EXIT to cancel)`, 1, menu.MaxNameLen, true)
	if err != nil {
		return err
	}
	if !skipped {
		u.Name = &v
	}
	t, skipped, err := c.askText(`Enter "SKIP" to keep the item type, or a new type (type EXIT to cancel)`, 1, menu.MaxTypeLen, true)
	if err != nil {
		return err
	}
	if !skipped {
		u.Type = &t
	}
	if u.Price, err = c.askPrice(`Enter "-2" to keep the price, or a new price (type -1 to cancel)`, true); err != nil {
		return err
	}
	u.ConfirmZero = u.Price != nil
	if u.Description, err = c.askOptional(`Enter "SKIP" to keep the description, a new one, or NONE / enter to clear it`, menu.MaxDescriptionLen, true); err != nil {
		return err
	}
	if u.ImageURL, err = c.askOptional(`Enter "SKIP" to keep the image URL, a new one, or NONE / enter to clear it`, menu.MaxImageURLLen, true); err != nil {
		return err
	}
	if u.Empty() {
		c.println("Nothing to update.")
		return nil
	}

	it, err := c.catalog.UpdateItem(ctx, sess, name, u)
	if err != nil {
		return err
	}
	c.printf("%s has been updated!\n", it.Name)
	return nil
}

func (c *Console) deleteItem(ctx context.Context, sess auth.Session) error {
	name, _, err := c.askText(`Enter name of item to delete, type "EXIT" to cancel`, 1, menu.MaxNameLen, false)
	if err != nil {
		return err
	}
	if err := c.catalog.DeleteItem(ctx, sess, name); err != nil {
		return err
	}
	c.printf("%s has been deleted!\n", name)
	return nil
}

func (c *Console) changeType(ctx context.Context, sess auth.Session) error {
	from, _, err := c.askText(`Enter item type to change (type "EXIT" to cancel)`, 1, menu.MaxTypeLen, false)
	if err != nil {
		return err
	}
	items, err := c.catalog.SearchByType(ctx, from)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperr.NotFoundf("no items of type %q", from)
	}
	to, _, err := c.askText(fmt.Sprintf("Enter new item type, at most %d characters (type EXIT to cancel)", menu.MaxTypeLen), 1, menu.MaxTypeLen, false)
	if err != nil {
		return err
	}
	n, err := c.catalog.ChangeAllOfType(ctx, sess, from, to)
	if err != nil {
		return err
	}
	c.printf("%d item(s) changed from %s to %s\n", n, from, to)
	return nil
}
