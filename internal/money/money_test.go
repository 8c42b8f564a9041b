package money

import (
	"testing"

	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

func TestFromDecimalString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in    string
		cents int64
	}{
		{"100.00", 10000},
		{"8.5", 850},
		{"0.005", 1},
		{"215.50", 21550},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := FromDecimalString(tc.in)
		if err != nil {
			t.Fatalf("FromDecimalString(%q) returned error: %v", tc.in, err)
		}
		if got.Cents() != tc.cents {
			t.Fatalf("FromDecimalString(%q) = %d cents, want %d", tc.in, got.Cents(), tc.cents)
		}
	}

	if _, err := FromDecimalString("not-a-number"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFromDecimalStringRejectsNegative(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"-10.00", "-0.01"} {
		if _, err := FromDecimalString(in); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("FromDecimalString(%q): expected validation error, got %v", in, err)
		}
	}
}

func TestMultiplyRoundsAtOperation(t *testing.T) {
	t.Parallel()

	price, err := FromDecimalString("8.50")
	if err != nil {
		t.Fatal(err)
	}
	if got := price.Multiply(3); got.Cents() != 2550 {
		t.Fatalf("8.50 x 3 = %d cents, want 2550", got.Cents())
	}
}

func TestSubFailsBelowZero(t *testing.T) {
	t.Parallel()

	a := FromCents(500)
	b := FromCents(600)
	if _, err := a.Sub(b); !pkgerrors.HasCode(err, pkgerrors.CodeNegativeResult) {
		t.Fatalf("expected negative result error, got %v", err)
	}

	got, err := b.Sub(a)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if got.Cents() != 100 {
		t.Fatalf("600 - 500 = %d cents, want 100", got.Cents())
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if got := FromCents(21550).String(); got != "215.50" {
		t.Fatalf("String() = %q, want 215.50", got)
	}
	if got := FromCents(0).String(); got != "0.00" {
		t.Fatalf("String() = %q, want 0.00", got)
	}
}
