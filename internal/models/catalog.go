package models

// Product represents a product item
type Product struct {
	ID          string
	Name        string
	Description string
	// Price in minor units
	Price    int64
	Currency string
	ImageURL string
}

// PriceLabel returns the formatted price
func (p Product) PriceLabel() string {
	return FormatPrice(p.Price, p.Currency)
}

// Catalog is the list of products on sale
type Catalog []Product

// DefaultCatalog returns the products listed by the fixture shop
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "1",
			Name:        "Cablu USB-C la USB-C, 1m",
			Description: "Cablu de date si incarcare, 60W.",
			Price:       2999,
			Currency:    "RON",
			ImageURL:    "/static/cable.svg",
		},
		{
			ID:          "2",
			Name:        "Mouse wireless",
			Description: "Mouse optic, 1600 DPI, receptor nano.",
			Price:       8950,
			Currency:    "RON",
			ImageURL:    "/static/mouse.svg",
		},
		{
			ID:          "3",
			Name:        "Tastatura mecanica",
			Description: "Switch-uri rosii, iluminare RGB.",
			Price:       34900,
			Currency:    "RON",
			ImageURL:    "/static/keyboard.svg",
		},
	}
}

// Find returns the product with the given ID
func (c Catalog) Find(id string) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Town is a delivery locality
type Town struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// County is a delivery region and the towns served in it
type County struct {
	Code  string
	Name  string
	Towns []Town
}

// Town returns the county's town with the given ID
func (c County) Town(id int) (Town, bool) {
	for _, t := range c.Towns {
		if t.ID == id {
			return t, true
		}
	}
	return Town{}, false
}

// Counties lists the regions offered in the checkout form, in display order
var Counties = []County{
	{Code: "AB", Name: "Alba", Towns: []Town{{101, "Alba Iulia"}, {102, "Aiud"}, {103, "Blaj"}}},
	{Code: "B", Name: "Bucuresti", Towns: []Town{{201, "Sector 1"}, {202, "Sector 2"}, {203, "Sector 3"}}},
	{Code: "CJ", Name: "Cluj", Towns: []Town{{301, "Cluj-Napoca"}, {302, "Turda"}, {303, "Dej"}}},
	{Code: "IS", Name: "Iasi", Towns: []Town{{401, "Iasi"}, {402, "Pascani"}}},
}

// FindCounty returns the county with the given code
func FindCounty(code string) (County, bool) {
	for _, c := range Counties {
		if c.Code == code {
			return c, true
		}
	}
	return County{}, false
}
