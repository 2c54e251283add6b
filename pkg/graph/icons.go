package graph

import "strings"

const defaultIcon = "circle"

// categoryIcons maps keywords of a category name to an icon name. The first
// matching keyword wins.
var categoryIcons = []struct {
	keyword string
	icon    string
}{
	{"fund", "coins"},
	{"financ", "coins"},
	{"money", "coins"},
	{"data", "database"},
	{"infrastructure", "server"},
	{"technolog", "cpu"},
	{"research", "flask"},
	{"science", "flask"},
	{"policy", "landmark"},
	{"regulat", "landmark"},
	{"govern", "landmark"},
	{"legal", "scale"},
	{"health", "heart-pulse"},
	{"clinical", "stethoscope"},
	{"medical", "stethoscope"},
	{"patient", "user"},
	{"community", "users"},
	{"coordinat", "network"},
	{"collaborat", "network"},
	{"public", "megaphone"},
	{"awareness", "megaphone"},
	{"communicat", "megaphone"},
	{"education", "graduation-cap"},
	{"training", "graduation-cap"},
	{"workforce", "briefcase"},
	{"talent", "briefcase"},
	{"equity", "scale"},
	{"access", "door-open"},
	{"market", "store"},
	{"industry", "factory"},
}

// categoryIcon derives the icon of a problem category from its name.
func categoryIcon(name string) string {
	lower := strings.ToLower(name)
	for _, ci := range categoryIcons {
		if strings.Contains(lower, ci.keyword) {
			return ci.icon
		}
	}
	return defaultIcon
}
