package domain

// SupplyObject describes one entry of the supply catalog.
type SupplyObject struct {
	Key      string
	Name     string
	Emoji    string
	Category string
}

// Catalog is the closed set of objects a supply timer can be started for.
// Keys are stable identifiers used in the timer file and in component custom
// IDs; the order here is the display order of the control surface.
var Catalog = []SupplyObject{
	{Key: "object_7", Name: "Объект №7", Emoji: "🏭", Category: "Военные объекты"},
	{Key: "military_warehouses", Name: "Военные Склады", Emoji: "📦", Category: "Военные объекты"},
	{Key: "radar_orbit", Name: "РЛС Орбита", Emoji: "📡", Category: "Военные объекты"},
	{Key: "aviation_depot", Name: "Авиационный Склад", Emoji: "✈️", Category: "Техника"},
	{Key: "armored_depot", Name: "Склад Бронетехники", Emoji: "🚜", Category: "Техника"},
	{Key: "fuel_depot", Name: "Топливная База", Emoji: "⛽", Category: "Снабжение"},
	{Key: "ammo_depot", Name: "Склад Боеприпасов", Emoji: "💥", Category: "Снабжение"},
	{Key: "medical_depot", Name: "Медицинский Склад", Emoji: "🏥", Category: "Снабжение"},
	{Key: "food_depot", Name: "Продовольственный Склад", Emoji: "🥫", Category: "Снабжение"},
	{Key: "equipment_depot", Name: "Склад Снаряжения", Emoji: "🎖️", Category: "Снабжение"},
}

// LookupObject finds a catalog entry by key.
func LookupObject(key string) (SupplyObject, bool) {
	for _, obj := range Catalog {
		if obj.Key == key {
			return obj, true
		}
	}
	return SupplyObject{}, false
}

// Categories returns the distinct catalog categories in declaration order.
func Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, obj := range Catalog {
		if !seen[obj.Category] {
			seen[obj.Category] = true
			out = append(out, obj.Category)
		}
	}
	return out
}

// ObjectsInCategory returns the catalog entries of one category in order.
func ObjectsInCategory(category string) []SupplyObject {
	var out []SupplyObject
	for _, obj := range Catalog {
		if obj.Category == category {
			out = append(out, obj)
		}
	}
	return out
}
