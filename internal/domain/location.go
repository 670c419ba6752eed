package domain

import "fmt"

// Address carries the structured part of a location. Parsers rarely fill
// every field, so all of them are optional.
type Address struct {
	Street  string `json:"street,omitempty" yaml:"street,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Location describes one end of a segment. Only Name is required; Code is
// a short disambiguating identifier such as an IATA airport code.
type Location struct {
	Name        string       `json:"name" yaml:"name"`
	Code        string       `json:"code,omitempty" yaml:"code,omitempty"`
	Address     *Address     `json:"address,omitempty" yaml:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Timezone    string       `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

func (l *Location) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: location is nil", ErrValidation)
	}
	if l.Name == "" {
		return fmt.Errorf("%w: location name is empty", ErrValidation)
	}
	return nil
}

// City returns the structured city when the parser supplied one.
func (l *Location) City() string {
	if l == nil || l.Address == nil {
		return ""
	}
	return l.Address.City
}

// Clone returns a deep copy, nil for nil.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	out := *l
	if l.Address != nil {
		addr := *l.Address
		out.Address = &addr
	}
	if l.Coordinates != nil {
		coords := *l.Coordinates
		out.Coordinates = &coords
	}
	return &out
}
