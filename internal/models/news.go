package models

import "time"

// Category classifies a news record. Only the values returned by
// Categories() are valid.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryBusiness   Category = "Business"
	CategoryWorld      Category = "World"
	CategoryScience    Category = "Science"
)

// Categories returns the fixed category set in a stable order.
func Categories() []Category {
	return []Category{
		CategoryTechnology,
		CategoryBusiness,
		CategoryWorld,
		CategoryScience,
	}
}

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnology, CategoryBusiness, CategoryWorld, CategoryScience:
		return true
	}
	return false
}

// NewsRecord is the payload published to the broker. It is created once by
// the generator and never mutated afterwards. The ID is a random draw with
// no uniqueness guarantee; consumers must not treat it as a primary key.
type NewsRecord struct {
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Keywords  []string  `json:"keywords"`
}
