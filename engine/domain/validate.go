package domain

import (
	"fmt"
	"math"
	"strings"
)

// ValidateVehicle checks the post-load invariants of a record: fuel economy,
// weight and model year are present, and every record has a display name.
func ValidateVehicle(v Vehicle) error {
	if math.IsNaN(v.MPG) || math.IsInf(v.MPG, 0) {
		return NewValidationError("mpg", fmt.Sprintf("%v", v.MPG), ErrInvalidVehicle)
	}
	if math.IsNaN(v.Weight) || math.IsInf(v.Weight, 0) {
		return NewValidationError("weight", fmt.Sprintf("%v", v.Weight), ErrInvalidVehicle)
	}
	if v.ModelYear == 0 {
		return NewValidationError("model_year", "0", ErrInvalidVehicle)
	}
	if strings.TrimSpace(v.Name) == "" {
		return NewValidationError("name", v.Name, ErrInvalidVehicle)
	}
	return nil
}
