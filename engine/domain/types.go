// Package domain defines the vehicle record, the origin code table, and the
// sentinel errors shared by the dashboard engine. It acts as the validation
// gate between the dataset loader and everything downstream.
package domain

import "fmt"

// Vehicle is one row of the fuel-efficiency table.
type Vehicle struct {
	Name       string  `json:"name"`
	Make       string  `json:"make,omitempty"`
	MPG        float64 `json:"mpg"`
	Cylinders  int     `json:"cylinders"` // 0 when the source value was unparsable
	Weight     float64 `json:"weight"`
	ModelYear  int     `json:"model_year"`
	OriginCode string  `json:"origin_code"`
	Origin     string  `json:"origin"` // "" is the null label

	Horsepower   *float64 `json:"horsepower,omitempty"`
	Displacement *float64 `json:"displacement,omitempty"`
	Acceleration *float64 `json:"acceleration,omitempty"`
}

// HasOrigin reports whether the record carries a derived origin label.
func (v Vehicle) HasOrigin() bool { return v.Origin != "" }

// HasCylinders reports whether the cylinder count was parsed.
func (v Vehicle) HasCylinders() bool { return v.Cylinders > 0 }

// PlaceholderName is the display name given to records whose source has no
// vehicle-name field. It is stable for a given ordinal.
func PlaceholderName(ordinal int) string {
	return fmt.Sprintf("Car-%d", ordinal)
}
