package domain

// Category is one of the fixed tip categories. Tips reference categories by
// name as free text; this is a referential match, not a foreign key.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories is the fixed catalogue, in display order.
var Categories = []Category{
	{ID: "digestion", Name: "Digestion & Gut Health"},
	{ID: "immunity", Name: "Immunity Boosting"},
	{ID: "children", Name: "Children's Health"},
	{ID: "skin", Name: "Skin Care & Beauty"},
	{ID: "women", Name: "Women's Health"},
	{ID: "mental", Name: "Mental Health"},
}

// ValidCategory reports whether name matches one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}
