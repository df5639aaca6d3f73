package calendar

import "time"

// DaysPerWeek is the width of a month grid row.
const DaysPerWeek = 7

// NumDays returns how many days the month has, using day 0 of the next month.
func NumDays(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInMonth lays out a month for a Sunday-first grid: one zero Date per
// weekday before the 1st, then every day of the month in order.
func DaysInMonth(year int, month time.Month) []Date {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	n := NumDays(year, month)

	cells := make([]Date, offset, offset+n)
	for day := 1; day <= n; day++ {
		cells = append(cells, Date{Year: first.Year(), Month: first.Month(), Day: day})
	}
	return cells
}

// Weeks splits grid cells into rows of seven, padding the last row with zero Dates.
func Weeks(cells []Date) [][]Date {
	weeks := make([][]Date, 0, (len(cells)+DaysPerWeek-1)/DaysPerWeek)
	for start := 0; start < len(cells); start += DaysPerWeek {
		row := make([]Date, DaysPerWeek)
		copy(row, cells[start:min(start+DaysPerWeek, len(cells))])
		weeks = append(weeks, row)
	}
	return weeks
}
