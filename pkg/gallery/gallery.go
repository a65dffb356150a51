package gallery

import (
	"net/url"
	"time"

	"github.com/moveplan/moveplan/pkg/collection"
)

type Category string

const (
	CategoryExterior Category = "exterior"
	CategoryLeisure  Category = "lazer"
	CategoryInterior Category = "interior"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryExterior, CategoryLeisure, CategoryInterior:
		return true
	}
	return false
}

type Photo struct {
	ID          collection.ID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	// Src is an inline data URL or a link.
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// placeholder draws a flat SVG card with a caption.
func placeholder(fill, caption string) string {
	svg := "<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 400 300'>" +
		"<rect width='400' height='300' fill='" + fill + "'/>" +
		"<text x='200' y='160' text-anchor='middle' fill='#5d4e37' font-family='Arial' font-size='20'>" + caption + "</text>" +
		"</svg>"
	return "data:image/svg+xml," + url.PathEscape(svg)
}

func seedPhotos() []Photo {
	return []Photo{
		{ID: "1", Title: "🏢 Fachada do Prédio", Description: "Vista externa do edifício", Category: CategoryExterior, Src: placeholder("#e6ddd4", "Fachada"), Alt: "Fachada do Prédio"},
		{ID: "2", Title: "🏊 Área da Piscina", Description: "Área de lazer com piscina", Category: CategoryLeisure, Src: placeholder("#87ceeb", "Piscina"), Alt: "Área da Piscina"},
		{ID: "3", Title: "🎉 Salão de Festas", Description: "Espaço para eventos e comemorações", Category: CategoryLeisure, Src: placeholder("#f8f5f1", "Salão de Festas"), Alt: "Salão de Festas"},
		{ID: "4", Title: "🛋️ Sala de Estar", Description: "Ambiente interno do apartamento", Category: CategoryInterior, Src: placeholder("#f5f5f5", "Sala de Estar"), Alt: "Sala de Estar"},
		{ID: "5", Title: "👩‍🍳 Cozinha", Description: "Área gourmet do apartamento", Category: CategoryInterior, Src: placeholder("#f9f9f9", "Cozinha"), Alt: "Cozinha"},
	}
}
