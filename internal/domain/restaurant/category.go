package restaurant

import "strings"

// Category is a cuisine category shared by restaurants and products.
type Category string

const (
	CategoryPizza     Category = "Pizza"
	CategoryBurger    Category = "Burger"
	CategoryJapanese  Category = "Japanese"
	CategoryChinese   Category = "Chinese"
	CategoryBrazilian Category = "Brazilian"
	CategoryItalian   Category = "Italian"
	CategoryMexican   Category = "Mexican"
	CategoryArabic    Category = "Arabic"
	CategoryDesserts  Category = "Desserts"
	CategoryBeverages Category = "Beverages"
)

var categories = []Category{
	CategoryPizza,
	CategoryBurger,
	CategoryJapanese,
	CategoryChinese,
	CategoryBrazilian,
	CategoryItalian,
	CategoryMexican,
	CategoryArabic,
	CategoryDesserts,
	CategoryBeverages,
}

// Categories returns the allowed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s case-insensitively against the allowed categories
// and returns the canonical spelling.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func categoryList() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// CategoryMessage is the validation message for an unknown category.
func CategoryMessage() string {
	return "must be one of: " + categoryList()
}
