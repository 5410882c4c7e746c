package marketplace

import "carmine/internal/domain"

// categories is the browse taxonomy. A make may appear in several categories.
var categories = []domain.Category{
	{Name: "Luxury", Makes: []string{"BMW", "Mercedes-Benz", "Audi", "Lexus", "Porsche", "Jaguar", "Cadillac", "Genesis", "Maserati", "Bentley"}},
	{Name: "SUV & Crossover", Makes: []string{"Jeep", "Land Rover", "Subaru", "Toyota", "Honda", "Mazda", "Kia", "Hyundai"}},
	{Name: "Trucks", Makes: []string{"Ford", "Chevrolet", "Ram", "GMC", "Toyota", "Nissan"}},
	{Name: "Electric", Makes: []string{"Tesla", "Rivian", "Lucid", "Polestar", "Nissan", "Chevrolet"}},
	{Name: "Sports", Makes: []string{"Porsche", "Ferrari", "Lamborghini", "Chevrolet", "Ford", "Mazda"}},
	{Name: "Economy", Makes: []string{"Toyota", "Honda", "Hyundai", "Kia", "Nissan", "Volkswagen", "Mitsubishi"}},
}

var allMakes = AllMakes(categories)

// Categories returns a copy of the browse taxonomy.
func Categories() []domain.Category {
	out := make([]domain.Category, len(categories))
	for i, c := range categories {
		out[i] = domain.Category{Name: c.Name, Makes: append([]string(nil), c.Makes...)}
	}
	return out
}

// Makes returns every make in the taxonomy once, in first-seen order.
func Makes() []string {
	return append([]string(nil), allMakes...)
}

// AllMakes flattens categories into a deduplicated list of makes, keeping
// the order in which each make first appears.
func AllMakes(cats []domain.Category) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range cats {
		for _, m := range c.Makes {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// LookupMake returns the canonical spelling of a make if it is part of the
// taxonomy, ignoring case.
func LookupMake(name string) (string, bool) {
	want := fold(name)
	if want == "" {
		return "", false
	}
	for _, m := range allMakes {
		if fold(m) == want {
			return m, true
		}
	}
	return "", false
}
