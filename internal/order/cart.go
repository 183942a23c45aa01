package order

import "github.com/shopspring/decimal"

type Line struct {
	Name  string
	Price decimal.Decimal
}

// Cart is an order still being assembled. Nothing is stored until it is
// placed.
type Cart struct {
	lines []Line
}

// Add appends an item. It reports false, and changes nothing, when the item
// is already in the cart.
func (c *Cart) Add(name string, price decimal.Decimal) bool {
	if c.Has(name) {
		return false
	}
	c.lines = append(c.lines, Line{Name: name, Price: price})
	return true
}

func (c *Cart) Has(name string) bool {
	for _, l := range c.lines {
		if l.Name == name {
			return true
		}
	}
	return false
}

func (c *Cart) Remove(name string) bool {
	for i, l := range c.lines {
		if l.Name == name {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Lines() []Line { return append([]Line(nil), c.lines...) }

func (c *Cart) Names() []string {
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.Name
	}
	return out
}

func (c *Cart) Total() decimal.Decimal {
	t := decimal.Zero
	for _, l := range c.lines {
		t = t.Add(l.Price)
	}
	return t
}

func (c *Cart) Len() int { return len(c.lines) }
