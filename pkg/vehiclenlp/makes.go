// Package vehiclenlp extracts the manufacturer from free-form vehicle names
// such as "chevrolet chevelle malibu" or "vw rabbit custom". The alias table
// covers the abbreviations and misspellings found in the UCI Auto MPG data.
package vehiclenlp

import (
	"strings"
	"unicode"
)

// makeAliases maps lower-case leading tokens to canonical make names.
var makeAliases = map[string]string{
	"amc":           "AMC",
	"audi":          "Audi",
	"bmw":           "BMW",
	"buick":         "Buick",
	"cadillac":      "Cadillac",
	"capri":         "Mercury",
	"chevrolet":     "Chevrolet",
	"chevroelt":     "Chevrolet",
	"chevy":         "Chevrolet",
	"chrysler":      "Chrysler",
	"datsun":        "Datsun",
	"dodge":         "Dodge",
	"fiat":          "Fiat",
	"ford":          "Ford",
	"hi":            "International Harvester",
	"honda":         "Honda",
	"maxda":         "Mazda",
	"mazda":         "Mazda",
	"mercedes":      "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"mercury":       "Mercury",
	"nissan":        "Nissan",
	"oldsmobile":    "Oldsmobile",
	"opel":          "Opel",
	"peugeot":       "Peugeot",
	"plymouth":      "Plymouth",
	"pontiac":       "Pontiac",
	"renault":       "Renault",
	"saab":          "Saab",
	"subaru":        "Subaru",
	"toyota":        "Toyota",
	"toyouta":       "Toyota",
	"triumph":       "Triumph",
	"vokswagen":     "Volkswagen",
	"volkswagen":    "Volkswagen",
	"volvo":         "Volvo",
	"vw":            "Volkswagen",
}

// MakeOf returns the canonical make for a vehicle name, or "" when the
// leading token is not a known make or alias.
func MakeOf(name string) string {
	mk, _ := Split(name)
	return mk
}

// Split separates a vehicle name into its canonical make and the remaining
// model text. Unknown makes return ("", trimmed name).
func Split(name string) (mk, model string) {
	name = strings.TrimSpace(name)
	fields := strings.FieldsFunc(name, unicode.IsSpace)
	if len(fields) == 0 {
		return "", ""
	}
	first := strings.ToLower(strings.Trim(fields[0], `"'.,`))
	canonical, ok := makeAliases[first]
	if !ok {
		return "", name
	}
	return canonical, strings.Join(fields[1:], " ")
}
