package domain

// Region is one mesoregion tab of the bulletin page.
type Region struct {
	ID    string
	Label string
}

// Regions lists the bulletin tabs in the order they are scraped.
var Regions = []Region{
	{ID: "agreste_potiguar", Label: "Agreste Potiguar"},
	{ID: "central_potiguar", Label: "Central Potiguar"},
	{ID: "leste_potiguar", Label: "Leste Potiguar"},
	{ID: "oeste_potiguar", Label: "Oeste Potiguar"},
}

// TabSelector matches the anchor that activates the region's tab.
func (r Region) TabSelector() string { return "a#" + r.ID }

// ContentSelector matches the container holding the region's table.
func (r Region) ContentSelector() string { return "#" + r.ID + "-content" }

// TableSelector matches the rendered table inside the region's container.
func (r Region) TableSelector() string { return r.ContentSelector() + " table" }
