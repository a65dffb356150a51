package budget

import (
	"bytes"
	"encoding/csv"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

type CsvReportRendererImpl struct {
}

func NewCsvReportRenderer() *CsvReportRendererImpl {
	return &CsvReportRendererImpl{}
}

// RenderReport lays out one row per product with its quotes, best store and
// savings, followed by a totals row.
func (t *CsvReportRendererImpl) RenderReport(products []Product, currency string) (string, error) {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b Product) int {
		if c := strings.Compare(a.Category.DisplayName(), b.Category.DisplayName()); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	data := make([][]string, 0, len(sorted)+2)
	data = append(data, []string{"Product", "Category", "Room", "Quotes", "Best store", "Best price", "Highest price", "Savings"})
	for _, p := range sorted {
		data = append(data, productRow(p, currency))
	}

	summary := Summarize(products, currency)
	data = append(data, []string{
		"TOTAL", "", "", "", "",
		FormatMoney(summary.TotalBudget, currency), "",
		FormatMoney(summary.TotalSavings, currency),
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func productRow(p Product, currency string) []string {
	quotes := make([]string, 0, len(p.Stores))
	for _, s := range p.Stores {
		quotes = append(quotes, s.Name+": "+FormatMoney(s.Price, currency))
	}
	row := []string{p.Name, p.Category.DisplayName(), p.Room, strings.Join(quotes, "; ")}

	best, ok := p.BestStore()
	if !ok {
		return append(row, "", "", "", "")
	}
	worst, _ := p.WorstPrice()
	return append(row,
		best.Name,
		FormatMoney(best.Price, currency),
		FormatMoney(worst, currency),
		FormatMoney(p.Savings(), currency),
	)
}
