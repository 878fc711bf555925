package metadata

import (
	"fmt"
	"strings"
)

// DepreciationMethod selects the book-value schedule algorithm.
type DepreciationMethod string

const (
	StraightLine             DepreciationMethod = "straight_line"
	DecliningBalance         DepreciationMethod = "declining_balance"
	DoubleDecliningBalance   DepreciationMethod = "double_declining_balance"
	OneFiftyDecliningBalance DepreciationMethod = "one_fifty_declining_balance"
	SumOfYearsDigits         DepreciationMethod = "sum_of_years_digits"
)

func NewDepreciationMethod(value string) (DepreciationMethod, error) {
	normalized := strings.Replace(strings.ToLower(strings.TrimSpace(value)), " ", "_", -1)
	method := DepreciationMethod(normalized)
	if !method.IsValid() {
		return method, fmt.Errorf(
			"value not valid, only valid values are: %s, %s, %s, %s, %s",
			StraightLine, DecliningBalance, DoubleDecliningBalance, OneFiftyDecliningBalance, SumOfYearsDigits,
		)
	}
	return method, nil
}

func (m DepreciationMethod) IsValid() bool {
	switch m {
	case StraightLine, DecliningBalance, DoubleDecliningBalance, OneFiftyDecliningBalance, SumOfYearsDigits:
		return true
	default:
		return false
	}
}

func (m DepreciationMethod) String() string {
	return string(m)
}
