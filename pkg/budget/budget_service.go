package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/moveplan/moveplan/pkg/sharing"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	StorageKey = "budget-products"
	// legacy keys written directly by the browser dashboard
	legacyProductsKey = "budgetProducts"
	legacyBudgetKey   = "apartmentBudget"
)

var ErrNoStores = fmt.Errorf("%w: a product needs at least one store quote", collection.ErrInvalid)

// PlanningItem is the shape shared under "budget-items" for the planning checklist.
type PlanningItem struct {
	Name      string `json:"name"`
	Room      string `json:"room"`
	Category  string `json:"category"`
	Price     string `json:"price,omitempty"`
	Purchased bool   `json:"purchased"`
}

type Service interface {
	Add(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id collection.ID, patch map[string]any) (Product, error)
	Remove(ctx context.Context, id collection.ID) (bool, error)
	Get(ctx context.Context, id collection.ID) (Product, error)
	List(ctx context.Context, filter collection.Filter) ([]Product, error)
	All(ctx context.Context) ([]Product, error)
	ReplaceAll(ctx context.Context, products []Product) error
	Purge(ctx context.Context) error
	Summary(ctx context.Context, currency string) (Summary, error)
	ShareForPlanning(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	products *collection.Manager[Product]
	sharing  sharing.Service
}

func NewServiceImpl(storage storage.Service, sharing sharing.Service, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		products: collection.NewManager(storage, clock, productSpec),
		sharing:  sharing,
	}
}

var productSpec = collection.Spec[Product]{
	Key:        StorageKey,
	LegacyKeys: []string{legacyProductsKey, legacyBudgetKey},
	GetID:      func(p Product) collection.ID { return p.ID },
	SetID:      func(p *Product, id collection.ID) { p.ID = id },
	Fields: map[string]func(Product) string{
		"category": func(p Product) string { return string(p.Category) },
		"room":     func(p Product) string { return p.Room },
	},
	SearchText: func(p Product) []string {
		texts := []string{p.Name, p.Description, p.Category.DisplayName()}
		for _, s := range p.Stores {
			texts = append(texts, s.Name)
		}
		return texts
	},
	Touch: func(p *Product, now time.Time, created bool) {
		if created && p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	},
	Validate: validateProduct,
}

func validateProduct(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", collection.ErrInvalid)
	}
	if len(p.Stores) == 0 {
		return ErrNoStores
	}
	for _, s := range p.Stores {
		if s.Price.IsNegative() {
			return fmt.Errorf("%w: price at %s is negative", collection.ErrInvalid, s.Name)
		}
	}
	return nil
}

func (s *ServiceImpl) Add(ctx context.Context, product Product) (Product, error) {
	return s.products.Add(ctx, product)
}

func (s *ServiceImpl) Update(ctx context.Context, id collection.ID, patch map[string]any) (Product, error) {
	return s.products.Update(ctx, id, patch)
}

func (s *ServiceImpl) Remove(ctx context.Context, id collection.ID) (bool, error) {
	return s.products.Remove(ctx, id)
}

func (s *ServiceImpl) Get(ctx context.Context, id collection.ID) (Product, error) {
	return s.products.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter collection.Filter) ([]Product, error) {
	return s.products.List(ctx, filter)
}

func (s *ServiceImpl) All(ctx context.Context) ([]Product, error) {
	return s.products.All(ctx)
}

func (s *ServiceImpl) ReplaceAll(ctx context.Context, products []Product) error {
	return s.products.ReplaceAll(ctx, products)
}

func (s *ServiceImpl) Purge(ctx context.Context) error {
	return s.products.Purge(ctx)
}

func (s *ServiceImpl) Summary(ctx context.Context, currency string) (Summary, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(products, currency), nil
}

// ShareForPlanning publishes every product tied to a room so the planning
// checklist can import it. Returns the number of shared items.
func (s *ServiceImpl) ShareForPlanning(ctx context.Context) (int, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return 0, err
	}
	items := make([]PlanningItem, 0, len(products))
	for _, p := range products {
		if p.Room == "" {
			continue
		}
		item := PlanningItem{
			Name:      p.Name,
			Room:      p.Room,
			Category:  p.Category.DisplayName(),
			Purchased: p.Purchased,
		}
		if best, ok := p.BestPrice(); ok {
			item.Price = best.StringFixed(2)
		}
		items = append(items, item)
	}
	if err := s.sharing.ShareData(ctx, sharing.BudgetItemsKey, items); err != nil {
		return 0, err
	}
	log.Infof("shared %d budget items with the planning checklist", len(items))
	return len(items), nil
}
