package calendar

import (
	"time"

	"github.com/moveplan/moveplan/pkg/collection"
)

// DateLayout and TimeLayout are the formats of Event.Date and Event.Time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Category string

const (
	CategoryMoving   Category = "mudanca"
	CategoryShopping Category = "compras"
	CategoryVisit    Category = "visita"
	CategoryServices Category = "servicos"
	CategoryOther    Category = "outros"
)

type categoryInfo struct {
	name string
	icon string
}

var categories = map[Category]categoryInfo{
	CategoryMoving:   {"Mudança", "🏠"},
	CategoryShopping: {"Compras", "🛒"},
	CategoryVisit:    {"Visita", "👥"},
	CategoryServices: {"Serviços", "🔧"},
	CategoryOther:    {"Outros", "📋"},
}

// DisplayName reports unknown categories as "Outros".
func (c Category) DisplayName() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return categories[CategoryOther].name
}

func (c Category) Icon() string {
	if info, ok := categories[c]; ok {
		return info.icon
	}
	return categories[CategoryOther].icon
}

type Event struct {
	ID          collection.ID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Category    Category      `json:"category"`
}

// Day parses Date; the zero time when it is malformed.
func (e Event) Day() time.Time {
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

func seedEvents() []Event {
	return []Event{
		{
			ID:          "1",
			Title:       "Entrega das Chaves",
			Description: "Recebimento das chaves do apartamento",
			Date:        "2025-01-15",
			Time:        "14:00",
			Category:    CategoryMoving,
		},
		{
			ID:          "2",
			Title:       "Compra de Móveis",
			Description: "Visita à loja de móveis para escolher sofá e mesa",
			Date:        "2025-01-20",
			Time:        "10:00",
			Category:    CategoryShopping,
		},
		{
			ID:          "3",
			Title:       "Instalação da Internet",
			Description: "Técnico virá instalar internet e TV a cabo",
			Date:        "2025-01-25",
			Time:        "08:00",
			Category:    CategoryServices,
		},
	}
}
