package notes

import (
	"strings"
	"time"

	"github.com/moveplan/moveplan/pkg/collection"
)

type Category string

const (
	CategoryPlanning   Category = "planejamento"
	CategoryShopping   Category = "compras"
	CategoryDecoration Category = "decoracao"
	CategoryMoving     Category = "mudanca"
	CategoryOther      Category = "outros"
)

var categoryNames = map[Category]string{
	CategoryPlanning:   "Planejamento",
	CategoryShopping:   "Compras",
	CategoryDecoration: "Decoração",
	CategoryMoving:     "Mudança",
	CategoryOther:      "Outros",
}

// DisplayName falls back to the raw value for categories it does not know.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baixa"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Note struct {
	ID        collection.ID `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Category  Category      `json:"category"`
	Priority  Priority      `json:"priority"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt"`
}

// SplitTags turns "a, b,,c" into [a b c].
func SplitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type Stats struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"byCategory"`
	ByPriority map[Priority]int `json:"byPriority"`
}

// ComputeStats counts notes per category and priority. The three known
// priorities are always present, even at zero.
func ComputeStats(notes []Note) Stats {
	stats := Stats{
		Total:      len(notes),
		ByCategory: make(map[Category]int),
		ByPriority: map[Priority]int{PriorityHigh: 0, PriorityMedium: 0, PriorityLow: 0},
	}
	for _, n := range notes {
		stats.ByCategory[n.Category]++
		stats.ByPriority[n.Priority]++
	}
	return stats
}
