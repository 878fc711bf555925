package depreciation

import (
	"time"

	"github.com/shopspring/decimal"

	"sams/pkg/metadata"
)

// Input describes a depreciable acquisition. Months is the depreciation
// period; only whole years (months / 12) produce schedule rows.
type Input struct {
	Cost     decimal.Decimal
	Salvage  decimal.Decimal
	Months   int
	Method   metadata.DepreciationMethod
	Acquired time.Time
}

// YearRow is one year of the computed book-value schedule.
type YearRow struct {
	Year               int             `json:"year"`
	BookValueYearStart decimal.Decimal `json:"book_value_year_start"`
	Depreciation       decimal.Decimal `json:"depreciation"`
	BookValueYearEnd   decimal.Decimal `json:"book_value_year_end"`
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Schedule computes the year-by-year depreciation table. Amounts are
// rounded to 2 decimals at every row; the running book value chains the
// rounded figures, so small drift accumulates instead of being corrected
// at the end. Declining-balance variants leave a residual above salvage.
//
// A non-positive cost or period yields an empty schedule, not an error.
func Schedule(in Input) []YearRow {
	if in.Cost.LessThanOrEqual(decimal.Zero) || in.Months <= 0 {
		return nil
	}

	years := in.Months / 12
	if years == 0 {
		return nil
	}

	// Partial first year: acquisition in July leaves 6 depreciable months.
	firstYearMonths := decimal.NewFromInt(int64(12 - int(in.Acquired.Month()) + 1))
	yearsDec := decimal.NewFromInt(int64(years))
	base := in.Cost.Sub(in.Salvage)

	book := in.Cost
	rows := make([]YearRow, 0, years)

	for i := 0; i < years; i++ {
		var dep decimal.Decimal

		switch in.Method {
		case metadata.StraightLine:
			annual := base.Div(yearsDec)
			if i == 0 {
				dep = annual.Div(twelve).Mul(firstYearMonths)
			} else {
				dep = annual
			}
		case metadata.DecliningBalance, metadata.DoubleDecliningBalance, metadata.OneFiftyDecliningBalance:
			rate := hundred.Div(yearsDec).Mul(decliningMultiplier(in.Method)).Div(hundred)
			if i == 0 {
				dep = book.Mul(rate).Div(twelve).Mul(firstYearMonths)
			} else {
				dep = book.Mul(rate)
			}
		case metadata.SumOfYearsDigits:
			sumOfYears := decimal.NewFromInt(int64(years * (years + 1) / 2))
			fraction := decimal.NewFromInt(int64(years - i)).Div(sumOfYears)
			dep = base.Mul(fraction)
			if i == 0 {
				dep = dep.Div(twelve).Mul(firstYearMonths)
			}
		default:
			return nil
		}

		dep = dep.Round(2)
		end := book.Sub(dep).Round(2)

		rows = append(rows, YearRow{
			Year:               i + 1,
			BookValueYearStart: book,
			Depreciation:       dep,
			BookValueYearEnd:   end,
		})

		book = end
	}

	return rows
}

func decliningMultiplier(m metadata.DepreciationMethod) decimal.Decimal {
	switch m {
	case metadata.DoubleDecliningBalance:
		return decimal.NewFromFloat(2.0)
	case metadata.OneFiftyDecliningBalance:
		return decimal.NewFromFloat(1.5)
	default:
		return decimal.NewFromFloat(1.0)
	}
}
