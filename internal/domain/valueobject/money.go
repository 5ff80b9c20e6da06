package valueobject

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Money хранит точную сумму и явный код валюты.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney проверяет сумму и валюту. Валюта никогда не подставляется по умолчанию.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, apperror.Validation("сумма не может быть отрицательной")
	}
	if !amount.Equal(amount.Round(2)) {
		return Money{}, apperror.Validation("сумма допускает не более двух знаков после запятой")
	}
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: code}, nil
}

// NewPositiveMoney используется для escrow и счетов, где нулевая сумма не имеет смысла.
func NewPositiveMoney(amount decimal.Decimal, currency string) (Money, error) {
	m, err := NewMoney(amount, currency)
	if err != nil {
		return Money{}, err
	}
	if !m.Amount.IsPositive() {
		return Money{}, apperror.Validation("сумма должна быть положительной")
	}
	return m, nil
}

// NormalizeCurrency приводит код к верхнему регистру и проверяет формат ISO 4217.
func NormalizeCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if !currencyPattern.MatchString(code) {
		return "", apperror.Validation("код валюты должен состоять из трёх латинских букв")
	}
	return code, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
