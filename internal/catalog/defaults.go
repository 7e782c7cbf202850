package catalog

// DefaultCuratedIndex returns the built-in article key to category code
// mapping. Keys are upstream catalog article identifiers; the set is small
// and maintained by hand for products that ship without reliable category
// data.
func DefaultCuratedIndex() map[string]string {
	return map[string]string{
		// Beer
		"HEIN-33-24": "10",
		"HEIN-50-12": "10",
		"GROL-45-16": "10",
		"AMST-33-24": "10",
		"JUPI-25-24": "10",

		// Soft drinks
		"COCA-50-12": "30",
		"COCA-33-24": "30",
		"FANT-33-24": "30",
		"SPRI-33-24": "30",

		// Water
		"SPAB-50-24": "40",
		"SPAR-50-24": "40",

		// Wine and spirits
		"VINO-75-06": "20",
		"JAME-70-01": "50",
		"KETL-100-1": "50",

		// Juice
		"APPL-100-6": "60",
	}
}
