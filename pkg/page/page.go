package page

import (
	"strings"
)

// Page identifies one of the dashboard views. Data written through the storage
// facade records the page it came from.
type Page string

const (
	Home     Page = "Home"
	Planning Page = "Planning"
	Budget   Page = "Budget"
	MySpace  Page = "MySpace"
	Notes    Page = "Notes"
	Settings Page = "Settings"
	Events   Page = "Events"
)

// Default is used whenever a page name is missing or unknown.
const Default = Home

var displayNames = map[Page]string{
	Home:     "Home",
	Planning: "Planejamento",
	Budget:   "Orçamentos",
	MySpace:  "Meu Espaço",
	Notes:    "Anotações",
	Settings: "Configuração",
	Events:   "Eventos",
}

// All lists the known pages in menu order.
func All() []Page {
	return []Page{Home, Planning, Budget, MySpace, Notes, Settings, Events}
}

// Parse matches name case-insensitively against page identifiers and display
// names. The second result is false when nothing matched.
func Parse(name string) (Page, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default, false
	}
	for _, p := range All() {
		if strings.EqualFold(string(p), name) || strings.EqualFold(displayNames[p], name) {
			return p, true
		}
	}
	return Default, false
}

// OrDefault returns the page named by name, or Default.
func OrDefault(name string) Page {
	p, _ := Parse(name)
	return p
}

func (p Page) DisplayName() string {
	if n, ok := displayNames[p]; ok {
		return n
	}
	return string(p)
}

func (p Page) Known() bool {
	_, ok := displayNames[p]
	return ok
}
