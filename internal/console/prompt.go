package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe/internal/menu"
)

// Typed inputs with a meaning of their own.
const (
	Exit    = "EXIT"
	Skip    = "SKIP"
	None    = "NONE"
	Confirm = "CONFIRM"

	priceQuit = "-1"
	priceKeep = "-2"
	backKey   = 9
)

var (
	// errQuit ends the program: input closed.
	errQuit = errors.New("input closed")
	// errLogout ends the user menu; the session must be opened again.
	errLogout = errors.New("logged out")
	// errCancel abandons the current operation.
	errCancel = errors.New("cancelled")
)

func (c *Console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }
func (c *Console) println(args ...any)               { fmt.Fprintln(c.out, args...) }

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", errQuit
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) ask(prompt string) (string, error) {
	c.println(prompt)
	return c.readLine()
}

// readChoice keeps asking until a whole number is typed.
func (c *Console) readChoice() (int, error) {
	for {
		c.printf("Please make your choice: ")
		s, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil {
			return n, nil
		}
		c.println("Your input is invalid!")
	}
}

// askText reads a value of at most max characters. EXIT cancels; when
// allowSkip is set, SKIP returns skipped=true.
func (c *Console) askText(prompt string, min, max int, allowSkip bool) (v string, skipped bool, err error) {
	for {
		s, err := c.ask(prompt)
		if err != nil {
			return "", false, err
		}
		switch {
		case s == Exit:
			return "", false, errCancel
		case allowSkip && s == Skip:
			return "", true, nil
		}
		s = strings.TrimSpace(s)
		n := utf8.RuneCountInString(s)
		if n < min {
			c.println("This field cannot be empty")
			continue
		}
		if n > max {
			c.printf("Must be at most %d characters\n", max)
			continue
		}
		return s, false, nil
	}
}

// askOptional reads an optional text field. NONE or an empty line clear
// it; SKIP keeps the old value when allowSkip is set.
func (c *Console) askOptional(prompt string, max int, allowSkip bool) (v *string, err error) {
	for {
		s, err := c.ask(prompt)
		if err != nil {
			return nil, err
		}
		if allowSkip && s == Skip {
			return nil, nil
		}
		if s == None || strings.TrimSpace(s) == "" {
			empty := ""
			return &empty, nil
		}
		if utf8.RuneCountInString(s) > max {
			c.printf("Must be at most %d characters\n", max)
			continue
		}
		return &s, nil
	}
}

// askPrice reads and normalizes a price. -1 cancels; -2 keeps the old
// price when allowKeep is set and returns nil. A price with more than two
// decimals offers truncation or rounding; zero has to be confirmed.
func (c *Console) askPrice(prompt string, allowKeep bool) (*decimal.Decimal, error) {
	for {
		s, err := c.ask(prompt)
		if err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		switch {
		case s == priceQuit:
			return nil, errCancel
		case allowKeep && s == priceKeep:
			return nil, nil
		}
		p, err := menu.ParsePrice(s)
		if err != nil {
			c.println(err.Error())
			continue
		}
		p, err = c.settlePrice(p)
		if errors.Is(err, errRetry) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &p, nil
	}
}

var errRetry = errors.New("retry")

func (c *Console) settlePrice(p decimal.Decimal) (decimal.Decimal, error) {
	_, err := menu.NormalizePrice(p, true)
	var pc *menu.PriceChoiceError
	if errors.As(err, &pc) {
		truncate, err := c.confirm(
			fmt.Sprintf("Price %s has more than two decimals", pc.Original.String()),
			"Truncate to "+pc.Truncated.StringFixed(2),
			"Round to "+pc.Rounded.StringFixed(2),
		)
		if err != nil {
			return decimal.Zero, err
		}
		p = pc.Rounded
		if truncate {
			p = pc.Truncated
		}
		_, err = menu.NormalizePrice(p, true)
	}
	if err != nil {
		c.println(err.Error())
		return decimal.Zero, errRetry
	}
	if p.IsZero() {
		s, err := c.ask(`***WARNING*** The price is 0, type "CONFIRM" to proceed, or anything else to cancel`)
		if err != nil {
			return decimal.Zero, err
		}
		if s != Confirm {
			return decimal.Zero, errCancel
		}
	}
	return p, nil
}

// confirm shows a yes/no choice and reports whether 1 was picked.
func (c *Console) confirm(question, yes, no string) (bool, error) {
	c.println(question)
	c.println("1. " + yes)
	c.println("2. " + no)
	for {
		n, err := c.readChoice()
		if err != nil {
			return false, err
		}
		switch n {
		case 1:
			return true, nil
		case 2:
			return false, nil
		}
		c.println("Unrecognized choice!")
	}
}

// pick lists names and returns the chosen one. The key after the last name
// goes back and returns ok=false.
func (c *Console) pick(title string, names []string) (name string, ok bool, err error) {
	c.println(title)
	for i, n := range names {
		c.printf("%d. %s\n", i+1, n)
	}
	c.println("------")
	back := len(names) + 1
	c.printf("%d. Go back\n", back)
	for {
		n, err := c.readChoice()
		if err != nil {
			return "", false, err
		}
		if n == back {
			return "", false, nil
		}
		if n >= 1 && n <= len(names) {
			return names[n-1], true, nil
		}
		c.println("Unrecognized choice!")
	}
}
