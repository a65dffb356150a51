package calendar

import (
	"fmt"
	"time"
)

// GridCells is the size of a month view: six weeks of seven days.
const GridCells = 42

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Cursor is the month a calendar view shows.
type Cursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func CursorAt(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

func (c Cursor) first() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (c Cursor) Previous() Cursor {
	return CursorAt(c.first().AddDate(0, -1, 0))
}

func (c Cursor) Next() Cursor {
	return CursorAt(c.first().AddDate(0, 1, 0))
}

// Label is the month heading, e.g. "Março 2025".
func (c Cursor) Label() string {
	return fmt.Sprintf("%s %d", monthNames[c.Month-1], c.Year)
}

func (c Cursor) Contains(day time.Time) bool {
	return day.Year() == c.Year && day.Month() == c.Month
}

type Cell struct {
	Day      int  `json:"day"`
	InMonth  bool `json:"inMonth"`
	IsToday  bool `json:"isToday"`
	HasEvent bool `json:"hasEvent"`
}

// MonthGrid lays out the month starting on Sunday, padded with the tail of the
// previous month and the head of the next one. Only days of the month itself
// are marked as today or as having events.
func MonthGrid(cursor Cursor, events []Event, today time.Time) []Cell {
	first := cursor.first()
	daysInMonth := first.AddDate(0, 1, -1).Day()
	daysInPrevious := first.AddDate(0, 0, -1).Day()
	leading := int(first.Weekday())

	eventDays := make(map[string]bool, len(events))
	for _, e := range events {
		eventDays[e.Date] = true
	}

	cells := make([]Cell, 0, GridCells)
	for i := leading - 1; i >= 0; i-- {
		cells = append(cells, Cell{Day: daysInPrevious - i})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(cursor.Year, cursor.Month, day, 0, 0, 0, 0, time.UTC)
		cells = append(cells, Cell{
			Day:      day,
			InMonth:  true,
			IsToday:  today.Year() == cursor.Year && today.Month() == cursor.Month && today.Day() == day,
			HasEvent: eventDays[date.Format(DateLayout)],
		})
	}
	for day := 1; len(cells) < GridCells; day++ {
		cells = append(cells, Cell{Day: day})
	}
	return cells
}
