package taxonomy

// DefaultCategoryCode is the configured fallback category for items that no
// matching step could place.
const DefaultCategoryCode = "99"

// defaultEntries is the built-in beverage shop taxonomy. Codes are stable
// short identifiers shared with the upstream catalog.
var defaultEntries = map[string]string{
	"10": "Beer",
	"20": "Wine",
	"30": "Soft Drinks",
	"40": "Water",
	"50": "Spirits",
	"60": "Juice",
	"70": "Cider",
	"80": "Crates & Deposit",
	"99": "Uncategorized",
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	return New(defaultEntries)
}
