package budget

import (
	"time"

	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFurniture  Category = "moveis"
	CategoryAppliances Category = "eletrodomesticos"
	CategoryDecoration Category = "decoracao"
	CategoryKitchen    Category = "cozinha"
	CategoryBathroom   Category = "banheiro"
	CategoryBedroom    Category = "quarto"
)

var categoryNames = map[Category]string{
	CategoryFurniture:  "Móveis",
	CategoryAppliances: "Eletrodomésticos",
	CategoryDecoration: "Decoração",
	CategoryKitchen:    "Cozinha",
	CategoryBathroom:   "Banheiro",
	CategoryBedroom:    "Quarto",
}

func Categories() []Category {
	return []Category{CategoryFurniture, CategoryAppliances, CategoryDecoration, CategoryKitchen, CategoryBathroom, CategoryBedroom}
}

// DisplayName falls back to the raw value for categories it does not know.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// StoreQuote is the price one store asks for a product.
type StoreQuote struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Link  string          `json:"link,omitempty"`
}

type Product struct {
	ID          collection.ID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	// Room links the product to a planning checklist room.
	Room      string       `json:"room,omitempty"`
	Purchased bool         `json:"purchased,omitempty"`
	Stores    []StoreQuote `json:"stores"`
	CreatedAt time.Time    `json:"createdAt"`
}

// BestPrice is the lowest quote; false when the product has no quotes.
func (p Product) BestPrice() (decimal.Decimal, bool) {
	best, ok := p.BestStore()
	return best.Price, ok
}

func (p Product) BestStore() (StoreQuote, bool) {
	if len(p.Stores) == 0 {
		return StoreQuote{}, false
	}
	best := p.Stores[0]
	for _, s := range p.Stores[1:] {
		if s.Price.LessThan(best.Price) {
			best = s
		}
	}
	return best, true
}

// WorstPrice is the highest quote; false when the product has no quotes.
func (p Product) WorstPrice() (decimal.Decimal, bool) {
	if len(p.Stores) == 0 {
		return decimal.Zero, false
	}
	worst := p.Stores[0].Price
	for _, s := range p.Stores[1:] {
		if s.Price.GreaterThan(worst) {
			worst = s.Price
		}
	}
	return worst, true
}

// Savings is the difference between the highest and the lowest quote.
func (p Product) Savings() decimal.Decimal {
	best, ok := p.BestPrice()
	if !ok {
		return decimal.Zero
	}
	worst, _ := p.WorstPrice()
	return worst.Sub(best)
}

type Summary struct {
	TotalItems   int
	TotalBudget  decimal.Decimal
	TotalSavings decimal.Decimal
	ByCategory   map[Category]int
	Currency     string
}

// Summarize totals the best prices and savings of products.
func Summarize(products []Product, currency string) Summary {
	summary := Summary{
		TotalBudget:  decimal.Zero,
		TotalSavings: decimal.Zero,
		ByCategory:   make(map[Category]int),
		Currency:     currency,
	}
	for _, p := range products {
		summary.TotalItems++
		summary.ByCategory[p.Category]++
		if best, ok := p.BestPrice(); ok {
			summary.TotalBudget = summary.TotalBudget.Add(best)
		}
		summary.TotalSavings = summary.TotalSavings.Add(p.Savings())
	}
	return summary
}
