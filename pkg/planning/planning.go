package planning

import (
	"github.com/moveplan/moveplan/pkg/collection"
	"github.com/shopspring/decimal"
)

const (
	RoomLivingRoom = "sala"
	RoomBedroom    = "quarto"
	RoomKitchen    = "cozinha"
	RoomBalcony    = "varanda"
)

var roomNames = map[string]string{
	RoomLivingRoom: "Sala",
	RoomBedroom:    "Quarto",
	RoomKitchen:    "Cozinha",
	RoomBalcony:    "Varanda",
}

// Rooms are the rooms every checklist starts with. Items may name other rooms.
func Rooms() []string {
	return []string{RoomLivingRoom, RoomBedroom, RoomKitchen, RoomBalcony}
}

func RoomName(room string) string {
	if name, ok := roomNames[room]; ok {
		return name
	}
	return room
}

type Item struct {
	ID        collection.ID    `json:"id"`
	Room      string           `json:"room"`
	Text      string           `json:"text"`
	Completed bool             `json:"completed"`
	Category  string           `json:"category,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type RoomProgress struct {
	Room      string  `json:"room"`
	Name      string  `json:"name"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Pending   int     `json:"pending"`
	Percent   float64 `json:"percent"`
}

// ComputeProgress reports every known room, then free-form rooms in the order
// they first appear.
func ComputeProgress(items []Item) []RoomProgress {
	order := Rooms()
	byRoom := make(map[string]*RoomProgress)
	for _, room := range order {
		byRoom[room] = &RoomProgress{Room: room, Name: RoomName(room)}
	}
	for _, item := range items {
		p, ok := byRoom[item.Room]
		if !ok {
			p = &RoomProgress{Room: item.Room, Name: RoomName(item.Room)}
			byRoom[item.Room] = p
			order = append(order, item.Room)
		}
		p.Total++
		if item.Completed {
			p.Completed++
		}
	}

	progress := make([]RoomProgress, 0, len(order))
	for _, room := range order {
		p := byRoom[room]
		p.Pending = p.Total - p.Completed
		if p.Total > 0 {
			p.Percent = float64(p.Completed) / float64(p.Total) * 100
		}
		progress = append(progress, *p)
	}
	return progress
}

func seedItems() []Item {
	seed := []struct {
		room, text, category string
	}{
		{RoomLivingRoom, "Banco baú ao lado da TV + Mesa redondo + 2 cadeiras", ""},
		{RoomLivingRoom, "Espelho até o teto / Jardim Invertido", ""},
		{RoomLivingRoom, "Prateleira suspensa, com metalon dourados", ""},
		{RoomLivingRoom, "Vaso de folha seca", ""},
		{RoomLivingRoom, "Sofá cama sem encosto / Encosto fino", ""},
		{RoomLivingRoom, "Prateleira suspensa, com metalon dourados (segunda)", ""},
		{RoomBedroom, "Cama baú", ""},
		{RoomBedroom, "Cabeceira adesiva estofada", ""},
		{RoomBedroom, "LED na cabeceira", ""},
		{RoomBedroom, "Cortina blackout", ""},
		{RoomKitchen, "Bianco Covelano da Portobello", "Revestimento"},
		{RoomKitchen, "Granito branco pitaya (Barato)", "Revestimento"},
		{RoomKitchen, "Bancada de porcelanato", "Revestimento"},
		{RoomKitchen, "Tanque com Tampo de pedra", "Revestimento"},
		{RoomKitchen, "Tanque de alumínio/ tanque da construtora", "Revestimento"},
		{RoomKitchen, "Meia parede de Drywall", "Revestimento"},
		{RoomKitchen, "Nicho em cima da geladeira", "Planejados"},
		{RoomKitchen, "Nicho ao lado do armário superior do fogão (3 nichos estreitos)", "Planejados"},
		{RoomKitchen, "Prateleira ao lado do armário superior do fogão", "Planejados"},
		{RoomKitchen, "Prateleira incompleta ao lado do micro-ondas", "Planejados"},
		{RoomKitchen, "Tirar o Ripado", "Planejados"},
		{RoomKitchen, "Nicho embaixo do armário de produtos de limpeza", "Planejados"},
		{RoomKitchen, "Barzinho de taça apertado", "Planejados"},
		{RoomKitchen, "Despensa em cima da máquina", "Planejados"},
		{RoomKitchen, "Depurador slim", "Eletros"},
		{RoomKitchen, "Cooktop Electrolux", "Eletros"},
		{RoomKitchen, "Forno Electrolux 50 litros", "Eletros"},
		{RoomKitchen, "Divisória de talher", "Mobília/Utensílios"},
		{RoomBalcony, "Plantas decorativas", ""},
		{RoomBalcony, "Mesa pequena para varanda", ""},
		{RoomBalcony, "Cadeiras para área externa", ""},
	}

	items := make([]Item, 0, len(seed))
	perRoom := make(map[string]int)
	for _, s := range seed {
		perRoom[s.room]++
		items = append(items, Item{
			ID:       roomScopedID(s.room, perRoom[s.room]),
			Room:     s.room,
			Text:     s.text,
			Category: s.category,
		})
	}
	return items
}
