package backup

import (
	"encoding/json"
	"time"

	"github.com/moveplan/moveplan/pkg/budget"
	"github.com/moveplan/moveplan/pkg/calendar"
	"github.com/moveplan/moveplan/pkg/gallery"
	"github.com/moveplan/moveplan/pkg/notes"
	"github.com/moveplan/moveplan/pkg/planning"
	"github.com/moveplan/moveplan/pkg/settings"
	"github.com/moveplan/moveplan/pkg/storage"
)

const Version = "1.0"

// ApartmentKey holds the address record of the new home, carried through
// backups as an opaque object.
const ApartmentKey = "apartment"

// Document is the backup file. Collections are stored whole; Entries carries
// every other namespaced entry (shares, navigation state) with its envelope.
type Document struct {
	Settings   settings.Document           `json:"settings,omitempty"`
	Budget     []budget.Product            `json:"budget"`
	Notes      []notes.Note                `json:"notes"`
	RoomData   []planning.Item             `json:"roomData"`
	Events     []calendar.Event            `json:"events"`
	Photos     []gallery.Photo             `json:"photos"`
	Apartment  json.RawMessage             `json:"apartment,omitempty"`
	Entries    map[string]storage.Envelope `json:"entries,omitempty"`
	ExportDate time.Time                   `json:"exportDate"`
	Version    string                      `json:"version"`
}

// sectionNames lists, per canonical field, the names older exports used for it.
var sectionNames = map[string][]string{
	"settings":  {"settings", "configuracoes"},
	"budget":    {"budget", "orcamentos", "products"},
	"notes":     {"notes"},
	"roomData":  {"roomData", "planningData"},
	"events":    {"events", "eventos"},
	"photos":    {"photos", "fotos"},
	"apartment": {"apartment"},
	"entries":   {"entries"},
}

// section returns the first present, non-null field among the canonical name
// and its aliases.
func section(fields map[string]json.RawMessage, canonical string) (json.RawMessage, bool) {
	for _, name := range sectionNames[canonical] {
		raw, ok := fields[name]
		if ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}
