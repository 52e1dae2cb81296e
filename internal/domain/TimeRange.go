package domain

import "time"

// TimeRange identifica a janela de tempo aplicada aos posts
type TimeRange string

const (
	TimeRangeWeek        TimeRange = "week"
	TimeRangeMonth       TimeRange = "month"
	TimeRangeThreeMonths TimeRange = "three_months"
	TimeRangeSixMonths   TimeRange = "six_months"
	TimeRangeYear        TimeRange = "year"
	TimeRangeTwoYears    TimeRange = "two_years"

	DefaultTimeRange = TimeRangeMonth
)

type TimeRangeOption struct {
	Value TimeRange `json:"value"`
	Label string    `json:"label"`
	Days  int       `json:"days"`
}

var TimeRangeOptions = []TimeRangeOption{
	{Value: TimeRangeWeek, Label: "Past Week", Days: 7},
	{Value: TimeRangeMonth, Label: "Past Month", Days: 30},
	{Value: TimeRangeThreeMonths, Label: "Past 3 Months", Days: 90},
	{Value: TimeRangeSixMonths, Label: "Past 6 Months", Days: 182},
	{Value: TimeRangeYear, Label: "Past Year", Days: 365},
	{Value: TimeRangeTwoYears, Label: "Past 2 Years", Days: 730},
}

// FindTimeRange busca a janela pelo valor. Valores desconhecidos retornam false.
func FindTimeRange(value string) (TimeRangeOption, bool) {
	for _, option := range TimeRangeOptions {
		if string(option.Value) == value {
			return option, true
		}
	}
	return TimeRangeOption{}, false
}

// Includes indica se um instante cai dentro da janela relativa a now
func (o TimeRangeOption) Includes(now, at time.Time) bool {
	return WithinDays(now, at, o.Days)
}

// WithinDays é verdadeiro quando (now - at) em dias <= days
func WithinDays(now, at time.Time, days int) bool {
	return DaysBetween(at, now) <= float64(days)
}
