package engagement

import "time"

// Theme is the forest's seasonal look. Presentation only.
type Theme struct {
	Month time.Month `json:"month"`
	Name  string     `json:"name"`
	Fruit string     `json:"fruit"`
	Color string     `json:"color"` // ANSI 256 colour code
}

var monthThemes = map[time.Month]Theme{
	time.January:   {Name: "Frost", Fruit: "mandarin", Color: "45"},
	time.February:  {Name: "Thaw", Fruit: "strawberry", Color: "204"},
	time.March:     {Name: "Bud", Fruit: "plum blossom", Color: "218"},
	time.April:     {Name: "Blossom", Fruit: "cherry", Color: "211"},
	time.May:       {Name: "Verdure", Fruit: "melon", Color: "114"},
	time.June:      {Name: "Rain", Fruit: "apricot", Color: "215"},
	time.July:      {Name: "Canopy", Fruit: "peach", Color: "209"},
	time.August:    {Name: "Zenith", Fruit: "watermelon", Color: "203"},
	time.September: {Name: "Harvest", Fruit: "grape", Color: "135"},
	time.October:   {Name: "Ember", Fruit: "persimmon", Color: "208"},
	time.November:  {Name: "Rustle", Fruit: "apple", Color: "160"},
	time.December:  {Name: "Evergreen", Fruit: "yuzu", Color: "220"},
}

// MonthTheme looks up the theme for a calendar month.
func MonthTheme(m time.Month) Theme {
	theme, ok := monthThemes[m]
	if !ok {
		return Theme{Month: m, Name: "Grove", Fruit: "acorn", Color: "34"}
	}
	theme.Month = m
	return theme
}
