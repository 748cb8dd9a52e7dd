package teller

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency the ledger service keeps accounts in.
const DefaultCurrency = "USD"

// Money represents a monetary amount, kept as an exact decimal.
type Money struct {
	value decimal.Decimal
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

func newDecimal(value any) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic(fmt.Sprintf("unsupported decimal source %T", value))
	}
}

// ParseAmount parses a user-typed amount into Money in the default currency.
// The input must parse as a decimal number and be strictly greater than zero;
// anything else is a *ValidationError and never reaches the network.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, &ValidationError{Reason: "please enter an amount"}
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Reason: fmt.Sprintf("amount %q is not a number", s)}
	}
	if !value.IsPositive() {
		return Money{}, &ValidationError{Reason: fmt.Sprintf("amount must be greater than zero, got %s", value)}
	}
	return Money{value: value, cur: DefaultCurrency}, nil
}

// currency returns the money's currency, never nil.
func (m Money) currency() money.Currency {
	cur := m.cur
	if cur == "" {
		cur = DefaultCurrency
	}
	return *money.New(0, cur).Currency()
}

// String formats the amount with its currency symbol, e.g. "$250.00".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string   { return m.cur }
func (m Money) Equal(n Money) bool { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool       { return m.value.IsZero() }
func (m Money) IsPositive() bool   { return m.value.IsPositive() }

// MarshalJSON encodes the bare amount as a JSON number, rounded to the
// currency's minor unit. The service expects {"amount": 50.00}, not an object.
func (m Money) MarshalJSON() ([]byte, error) {
	rounded := m.value.Round(int32(m.currency().Fraction))
	return []byte(rounded.String()), nil
}

// UnmarshalJSON decodes a bare JSON number, as the balance endpoint returns.
func (m *Money) UnmarshalJSON(data []byte) error {
	var value decimal.Decimal
	if err := value.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("cannot decode amount %q: %w", string(data), err)
	}
	m.value = value
	m.cur = DefaultCurrency
	return nil
}
