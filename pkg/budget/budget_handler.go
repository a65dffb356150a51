package budget

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moveplan/moveplan/internal/rest"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StoreQuoteDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Link  string  `json:"link,omitempty"`
}

type ProductDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	CategoryName string          `json:"categoryName,omitempty"`
	Room         string          `json:"room,omitempty"`
	Purchased    bool            `json:"purchased"`
	Stores       []StoreQuoteDTO `json:"stores"`
	BestPrice    *float64        `json:"bestPrice,omitempty"`
	WorstPrice   *float64        `json:"worstPrice,omitempty"`
	Savings      float64         `json:"savings"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
}

type SummaryDTO struct {
	TotalItems     int            `json:"totalItems"`
	TotalBudget    float64        `json:"totalBudget"`
	TotalSavings   float64        `json:"totalSavings"`
	FormattedTotal string         `json:"formattedTotal"`
	FormattedSaved string         `json:"formattedSavings"`
	ByCategory     map[string]int `json:"byCategory"`
	Currency       string         `json:"currency"`
}

// CurrencyProvider returns the display currency configured in the settings.
type CurrencyProvider func(ctx context.Context) string

type BudgetHandler struct {
	budgetService Service
	csvRenderer   *CsvReportRendererImpl
	currency      CurrencyProvider
}

func NewBudgetHandler(budgetService Service, csvRenderer *CsvReportRendererImpl, currency CurrencyProvider) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, csvRenderer: csvRenderer, currency: currency}
}

func (handler *BudgetHandler) Register(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new product")

	var productDTO ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&productDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := handler.budgetService.Add(r.Context(), DTOToProduct(productDTO))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ProductToDTO(created))
}

func (handler *BudgetHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := handler.budgetService.List(r.Context(), collection.FilterFromQuery(r.URL.Query(), "category"))
	if err != nil {
		collection.WriteError(w, err)
		return
	}

	productsDTO := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		productsDTO = append(productsDTO, ProductToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, productsDTO)
}

func (handler *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := handler.budgetService.Get(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProductToDTO(product))
}

func (handler *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, err := collection.DecodePatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := handler.budgetService.Update(r.Context(), collection.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProductToDTO(updated))
}

func (handler *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := handler.budgetService.Remove(r.Context(), collection.ID(mux.Vars(r)["id"]))
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	if !ok {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *BudgetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	currency := handler.currency(r.Context())
	summary, err := handler.budgetService.Summary(r.Context(), currency)
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	byCategory := make(map[string]int, len(summary.ByCategory))
	for c, n := range summary.ByCategory {
		byCategory[string(c)] = n
	}
	rest.WriteJSON(w, http.StatusOK, SummaryDTO{
		TotalItems:     summary.TotalItems,
		TotalBudget:    summary.TotalBudget.InexactFloat64(),
		TotalSavings:   summary.TotalSavings.InexactFloat64(),
		FormattedTotal: FormatMoney(summary.TotalBudget, currency),
		FormattedSaved: FormatMoney(summary.TotalSavings, currency),
		ByCategory:     byCategory,
		Currency:       currency,
	})
}

func (handler *BudgetHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	products, err := handler.budgetService.All(r.Context())
	if err != nil {
		collection.WriteError(w, err)
		return
	}
	report, err := handler.csvRenderer.RenderReport(products, handler.currency(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="budget.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}

func (handler *BudgetHandler) ShareForPlanning(w http.ResponseWriter, r *http.Request) {
	shared, err := handler.budgetService.ShareForPlanning(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"shared": shared})
}

func ProductToDTO(p Product) ProductDTO {
	stores := make([]StoreQuoteDTO, 0, len(p.Stores))
	for _, s := range p.Stores {
		stores = append(stores, StoreQuoteDTO{Name: s.Name, Price: s.Price.InexactFloat64(), Link: s.Link})
	}
	dto := ProductDTO{
		ID:           string(p.ID),
		Name:         p.Name,
		Description:  p.Description,
		Category:     string(p.Category),
		CategoryName: p.Category.DisplayName(),
		Room:         p.Room,
		Purchased:    p.Purchased,
		Stores:       stores,
		Savings:      p.Savings().InexactFloat64(),
	}
	if best, ok := p.BestPrice(); ok {
		f := best.InexactFloat64()
		dto.BestPrice = &f
	}
	if worst, ok := p.WorstPrice(); ok {
		f := worst.InexactFloat64()
		dto.WorstPrice = &f
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = &p.CreatedAt
	}
	return dto
}

func DTOToProduct(dto ProductDTO) Product {
	stores := make([]StoreQuote, 0, len(dto.Stores))
	for _, s := range dto.Stores {
		stores = append(stores, StoreQuote{Name: s.Name, Price: decimal.NewFromFloat(s.Price), Link: s.Link})
	}
	return Product{
		ID:          collection.ID(dto.ID),
		Name:        dto.Name,
		Description: dto.Description,
		Category:    Category(dto.Category),
		Room:        dto.Room,
		Purchased:   dto.Purchased,
		Stores:      stores,
	}
}
