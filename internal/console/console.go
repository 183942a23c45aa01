// Package console is the interactive terminal front end. Each menu is a
// dispatch table chosen by the role of the logged in user; the session is
// passed explicitly to every action.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
	"github.com/MikeMC777/cafe/internal/menu"
	"github.com/MikeMC777/cafe/internal/order"
	"github.com/MikeMC777/cafe/internal/user"
)

type Accounts interface {
	SignUp(ctx context.Context, login, password, phone string) (*user.User, error)
	Authenticate(ctx context.Context, login, password string) (auth.Session, error)
	Revalidate(ctx context.Context, sess auth.Session) error
	Get(ctx context.Context, sess auth.Session, login string) (*user.User, error)
	UpdateSelf(ctx context.Context, sess auth.Session, up user.ProfileUpdate) (bool, error)
	UpdateOther(ctx context.Context, sess auth.Session, target string, up user.ProfileUpdate) error
	SetFavorites(ctx context.Context, sess auth.Session, login string, items []string) error
	ClearFavorites(ctx context.Context, sess auth.Session, login string) error
}

type Catalog interface {
	List(ctx context.Context) ([]menu.Item, error)
	Get(ctx context.Context, name string) (*menu.Item, error)
	SearchByName(ctx context.Context, name string) ([]menu.Item, error)
	SearchByType(ctx context.Context, typ string) ([]menu.Item, error)
	CreateItem(ctx context.Context, sess auth.Session, it menu.Item, confirmZero bool) (*menu.Item, error)
	UpdateItem(ctx context.Context, sess auth.Session, name string, u menu.ItemUpdate) (*menu.Item, error)
	ChangeAllOfType(ctx context.Context, sess auth.Session, from, to string) (int64, error)
	DeleteItem(ctx context.Context, sess auth.Session, name string) error
}

type Orders interface {
	Quote(ctx context.Context, item string) (decimal.Decimal, error)
	PlaceOrder(ctx context.Context, sess auth.Session, items []string) (*order.Detail, error)
	GetOrder(ctx context.Context, sess auth.Session, id int64) (*order.Detail, error)
	AddItem(ctx context.Context, sess auth.Session, id int64, item string) error
	RemoveItem(ctx context.Context, sess auth.Session, id int64, item string) (bool, error)
	AddComment(ctx context.Context, sess auth.Session, id int64, item, text string) error
	CancelOrder(ctx context.Context, sess auth.Session, id int64) error
	SetPaid(ctx context.Context, sess auth.Session, id int64) (bool, error)
	SetItemStatus(ctx context.Context, sess auth.Session, id int64, item string, st order.Status) error
}

type Reports interface {
	RecentOrders(ctx context.Context, w io.Writer, sess auth.Session, login string) (int, error)
	UnpaidOrders(ctx context.Context, w io.Writer, sess auth.Session) (int, error)
}

type Deps struct {
	Accounts Accounts
	Catalog  Catalog
	Orders   Orders
	Reports  Reports
}

type Console struct {
	in       *bufio.Reader
	out      io.Writer
	accounts Accounts
	catalog  Catalog
	orders   Orders
	reports  Reports
	log      *logrus.Entry
}

func New(in io.Reader, out io.Writer, d Deps) *Console {
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		accounts: d.Accounts,
		catalog:  d.Catalog,
		orders:   d.Orders,
		reports:  d.Reports,
		log:      logrus.WithField("component", "console"),
	}
}

// entry is one line of a dispatch table.
type entry struct {
	key   int
	label string
	run   func(ctx context.Context, sess auth.Session) error
}

// loop shows a table until its back key is chosen. Actions report their
// own problems; only errQuit and errLogout leave the loop.
func (c *Console) loop(ctx context.Context, sess auth.Session, title, back string, table func(auth.Session) []entry) error {
	for {
		entries := table(sess)
		c.println("")
		c.println(title)
		c.println("---------")
		for _, e := range entries {
			c.printf("%d. %s\n", e.key, e.label)
		}
		c.println("---------")
		c.printf("%d. %s\n", backKey, back)

		n, err := c.readChoice()
		if err != nil {
			return err
		}
		if n == backKey {
			return nil
		}
		var run func(context.Context, auth.Session) error
		for _, e := range entries {
			if e.key == n {
				run = e.run
			}
		}
		if run == nil {
			c.println("Unrecognized choice!")
			continue
		}
		if err := c.report(run(ctx, sess)); err != nil {
			return err
		}
	}
}

// report prints err for the user and swallows it unless it has to unwind
// a menu.
func (c *Console) report(err error) error {
	switch {
	case err == nil, errors.Is(err, errCancel):
		return nil
	case errors.Is(err, errQuit), errors.Is(err, errLogout):
		return err
	case errors.Is(err, apperr.ErrReauthRequired):
		c.println(err.Error())
		return errLogout
	case errors.Is(err, apperr.ErrDatabase):
		c.log.WithError(err).Error("operation failed")
		c.println("Something went wrong, the operation was not completed.")
		return nil
	default:
		c.println(err.Error())
		return nil
	}
}

// Run shows the main menu until EXIT is chosen or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.println("")
	c.println("*******************************************************")
	c.println("                  Café ordering system                 ")
	c.println("*******************************************************")

	for {
		c.println("")
		c.println("MAIN MENU")
		c.println("---------")
		c.println("1. Create user")
		c.println("2. Log in")
		c.printf("%d. < EXIT\n", backKey)

		n, err := c.readChoice()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		switch n {
		case 1:
			err = c.signUp(ctx)
		case 2:
			err = c.logIn(ctx)
		case backKey:
			c.println("Bye!")
			return nil
		default:
			c.println("Unrecognized choice!")
		}
		if errors.Is(c.report(err), errQuit) {
			return nil
		}
	}
}

func (c *Console) signUp(ctx context.Context) error {
	login, _, err := c.askText("Enter user login:", 1, user.MaxLoginLen, false)
	if err != nil {
		return err
	}
	password, _, err := c.askText("Enter user password:", 1, user.MaxPasswordLen, false)
	if err != nil {
		return err
	}
	phone, _, err := c.askText("Enter user phone:", 1, user.MaxPhoneLen, false)
	if err != nil {
		return err
	}
	if _, err := c.accounts.SignUp(ctx, login, password, phone); err != nil {
		return err
	}
	c.println("User successfully created!")
	return nil
}

func (c *Console) logIn(ctx context.Context) error {
	login, err := c.ask("Enter user login:")
	if err != nil {
		return err
	}
	password, err := c.ask("Enter user password:")
	if err != nil {
		return err
	}
	sess, err := c.accounts.Authenticate(ctx, login, password)
	if err != nil {
		return err
	}
	c.printf("Welcome, %s (%s)\n", sess.Login, sess.Role)
	err = c.userMenu(ctx, sess)
	if errors.Is(err, errLogout) {
		c.println("Logged out.")
		return nil
	}
	return err
}

// userMenu is the top menu of a session. The session is checked against
// the stored credentials before every action.
func (c *Console) userMenu(ctx context.Context, sess auth.Session) error {
	return c.loop(ctx, sess, "MAIN MENU", "Log out", func(auth.Session) []entry {
		guard := func(run func(context.Context, auth.Session) error) func(context.Context, auth.Session) error {
			return func(ctx context.Context, sess auth.Session) error {
				if err := c.accounts.Revalidate(ctx, sess); err != nil {
					return err
				}
				return run(ctx, sess)
			}
		}
		return []entry{
			{1, "Goto Menu", guard(c.catalogMenu)},
			{2, "Update Profile", guard(c.profileMenu)},
			{3, "Place an Order", guard(c.placeOrder)},
			{4, "Update an Order", guard(c.ordersMenu)},
		}
	})
}
