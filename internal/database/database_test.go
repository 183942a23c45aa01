package database

import (
	"bytes"
	"io/fs"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u@localhost:5432/cafe?sslmode=disable": "pgx5://u@localhost:5432/cafe?sslmode=disable",
		"postgresql://u@db/cafe":                           "pgx5://u@db/cafe",
		"pgx5://already":                                   "pgx5://already",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q)=%q want %q", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("want up and down migration, got %v", names)
	}
}

func TestSchemaConstrainsEnums(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{
		"CHECK (type IN ('Customer', 'Employee', 'Manager'))",
		"CHECK (status IN ('Hasn''t Started', 'Started', 'Finished'))",
	} {
		if !strings.Contains(string(up), want) {
			t.Fatalf("missing constraint %s", want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	price := pgtype.Numeric{Int: big.NewInt(350), Exp: -2, Valid: true}
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  Latte   ", "Latte"},
		{[]byte("Drink "), "Drink"},
		{int32(7), "7"},
		{true, "true"},
		{ts, "2024-03-01 09:30:00"},
		{price, "3.50"},
	}
	for _, c := range cases {
		if got := formatValue(c.in); got != c.want {
			t.Fatalf("formatValue(%v)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, []string{"order_id", "login", "total"}, [][]string{
		{"1", "alice", "5.50"},
		{"2", "bob", "2.00"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "order_id\tlogin\ttotal\n1\talice\t5.50\n2\tbob\t2.00\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
