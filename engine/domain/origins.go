package domain

// Region labels produced by the origin code table.
const (
	OriginUSA    = "USA"
	OriginEurope = "Europe"
	OriginJapan  = "Japan"
)

// OriginCodes maps the dataset's numeric origin codes to region labels.
var OriginCodes = map[int]string{
	1: OriginUSA,
	2: OriginEurope,
	3: OriginJapan,
}

// OriginLabel returns the region label for a numeric origin code.
// Codes outside the table yield ("", false), i.e. a null label.
func OriginLabel(code int) (string, bool) {
	label, ok := OriginCodes[code]
	return label, ok
}
