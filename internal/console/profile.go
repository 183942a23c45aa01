package console

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/user"
)

func (c *Console) profileMenu(ctx context.Context, sess auth.Session) error {
	return c.loop(ctx, sess, "PROFILE MENU", "Back to main menu", c.profileTable)
}

func (c *Console) profileTable(sess auth.Session) []entry {
	t := []entry{
		{1, "View my profile", c.showProfile},
		{2, "Update my profile", c.updateSelf},
		{3, "Favorite items", func(ctx context.Context, sess auth.Session) error {
			return c.favoritesMenu(ctx, sess, sess.Login)
		}},
	}
	if sess.IsManager() {
		t = append(t, entry{4, "Edit another user", c.editOther})
	}
	return t
}

func (c *Console) printUser(u *user.User) {
	c.println("------------------")
	c.println("Login: " + u.Login)
	c.println("Phone: " + u.Phone)
	c.println("Role: " + string(u.Role))
	c.println("Favorite items: " + user.JoinFavorites(u.Favorites))
}

func (c *Console) showProfile(ctx context.Context, sess auth.Session) error {
	u, err := c.accounts.Get(ctx, sess, sess.Login)
	if err != nil {
		return err
	}
	c.printUser(u)
	return nil
}

// collectUpdate asks for each field the caller may change. SKIP keeps a
// field; EXIT cancels the whole update.
func (c *Console) collectUpdate(withLoginAndRole bool) (user.ProfileUpdate, error) {
	var up user.ProfileUpdate
	if withLoginAndRole {
		v, skipped, err := c.askText(`Enter "SKIP" to keep the login, or a new login (type EXIT to cancel)`, 1, user.MaxLoginLen, true)
		if err != nil {
			return up, err
		}
		if !skipped {
			up.Login = &v
		}
	}
	v, skipped, err := c.askText(`Enter "SKIP" to keep the phone number, or a new one (type EXIT to cancel)`, 1, user.MaxPhoneLen, true)
	if err != nil {
		return up, err
	}
	if !skipped {
		up.Phone = &v
	}
	pw, skipped, err := c.askText(`Enter "SKIP" to keep the password, or a new one (type EXIT to cancel)`, 1, user.MaxPasswordLen, true)
	if err != nil {
		return up, err
	}
	if !skipped {
		up.Password = &pw
	}
	if withLoginAndRole {
		for {
			s, skipped, err := c.askText(`Enter "SKIP" to keep the role, or Customer, Employee or Manager (type EXIT to cancel)`, 1, 20, true)
			if err != nil {
				return up, err
			}
			if skipped {
				break
			}
			r, err := auth.ParseRole(s)
			if err != nil {
				c.println(err.Error())
				continue
			}
			up.Role = &r
			break
		}
	}
	return up, nil
}

// updateSelf asks for the current password first. When the change
// invalidates the session the user is logged out.
func (c *Console) updateSelf(ctx context.Context, sess auth.Session) error {
	pw, err := c.ask("Please enter your password to continue")
	if err != nil {
		return err
	}
	if _, err := c.accounts.Authenticate(ctx, sess.Login, pw); err != nil {
		c.println("Incorrect password!")
		return nil
	}
	up, err := c.collectUpdate(sess.IsManager())
	if err != nil {
		return err
	}
	if up.Empty() {
		c.println("Nothing to update.")
		return nil
	}
	reauth, err := c.accounts.UpdateSelf(ctx, sess, up)
	if err != nil {
		return err
	}
	c.println("Profile updated!")
	if reauth {
		c.println("Your credentials changed, please log in again.")
		return errLogout
	}
	return nil
}

func (c *Console) editOther(ctx context.Context, sess auth.Session) error {
	login, _, err := c.askText(`Enter login of another user to edit their profile, or "EXIT" to cancel`, 1, user.MaxLoginLen, false)
	if err != nil {
		return err
	}
	if login == sess.Login {
		c.println(`Use "Update my profile" to edit your own account.`)
		return nil
	}
	u, err := c.accounts.Get(ctx, sess, login)
	if err != nil {
		return err
	}
	c.printUser(u)
	return c.loop(ctx, sess, "EDIT "+strings.ToUpper(login), "Go back", func(auth.Session) []entry {
		return []entry{
			{1, "Change login, phone, password or role", func(ctx context.Context, sess auth.Session) error {
				up, err := c.collectUpdate(true)
				if err != nil {
					return err
				}
				if up.Empty() {
					c.println("Nothing to update.")
					return nil
				}
				if err := c.accounts.UpdateOther(ctx, sess, login, up); err != nil {
					return err
				}
				if up.Login != nil {
					login = *up.Login
				}
				c.println("User updated!")
				return nil
			}},
			{2, "Favorite items", func(ctx context.Context, sess auth.Session) error {
				return c.favoritesMenu(ctx, sess, login)
			}},
		}
	})
}

func (c *Console) favoritesMenu(ctx context.Context, sess auth.Session, login string) error {
	return c.loop(ctx, sess, "FAVORITE ITEMS MENU", "Back", func(auth.Session) []entry {
		return []entry{
			{1, "Set list of favorite items (replaces the current list)", func(ctx context.Context, sess auth.Session) error {
				return c.setFavorites(ctx, sess, login)
			}},
			{2, "Remove list of favorite items", func(ctx context.Context, sess auth.Session) error {
				if err := c.accounts.ClearFavorites(ctx, sess, login); err != nil {
					return err
				}
				c.println("Favorite items cleared.")
				return nil
			}},
		}
	})
}

// setFavorites collects item names until EXIT, rejecting names that are
// not on the menu and stopping when the list would grow too long.
func (c *Console) setFavorites(ctx context.Context, sess auth.Session, login string) error {
	var items []string
	for {
		s, err := c.ask("Enter an item to put on the list, or type EXIT to stop adding")
		if err != nil {
			return err
		}
		if s == Exit {
			break
		}
		s = strings.TrimSpace(s)
		if _, err := c.catalog.Get(ctx, s); err != nil {
			c.println("That item is not on our menu!")
			continue
		}
		next := append(append([]string(nil), items...), s)
		if utf8.RuneCountInString(user.JoinFavorites(next)) > user.MaxFavoritesLen {
			c.println("List of item names too long!")
			break
		}
		items = next
	}
	if len(items) == 0 {
		c.println("No items entered, list unchanged.")
		return nil
	}
	if err := c.accounts.SetFavorites(ctx, sess, login, items); err != nil {
		return err
	}
	c.println(fmt.Sprintf("Favorite items set: %s", user.JoinFavorites(items)))
	return nil
}
