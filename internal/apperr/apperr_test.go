package apperr

import (
	"errors"
	"testing"
)

func TestKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
		msg  string
	}{
		{Validationf("login must be at most %d characters", 50), ErrValidation, "login must be at most 50 characters"},
		{NotFoundf("order %d does not exist", 7), ErrNotFound, "order 7 does not exist"},
		{Forbiddenf("only managers can edit the menu"), ErrForbidden, "only managers can edit the menu"},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.kind) {
			t.Fatalf("%q should be %v", c.err, c.kind)
		}
		if c.err.Error() != c.msg {
			t.Fatalf("msg=%q want %q", c.err.Error(), c.msg)
		}
	}
}

func TestDatabaseWrapsOnlyUnclassified(t *testing.T) {
	if Database("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}

	raw := errors.New("connection reset")
	err := Database("insert order", raw)
	if !errors.Is(err, ErrDatabase) || !errors.Is(err, raw) {
		t.Fatalf("wrapped error lost its chain: %v", err)
	}
	if err.Error() != "insert order: database error: connection reset" {
		t.Fatalf("msg=%q", err.Error())
	}

	nf := NotFoundf("menu item %q does not exist", "Latte")
	if got := Database("get item", nf); got != nf {
		t.Fatalf("classified error was rewrapped: %v", got)
	}
}
