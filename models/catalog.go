package models

import "time"

// Country is a catalog country. Hotels is only populated by detail lookups.
type Country struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ShortName string    `json:"shortName" db:"short_name"`
	Hotels    []Hotel   `json:"hotels,omitempty"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// TableName returns the table name for the Country model
func (Country) TableName() string {
	return "countries"
}

// Hotel is a catalog hotel belonging to a country.
type Hotel struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Rating    float64   `json:"rating" db:"rating"`
	CountryID int       `json:"countryId" db:"country_id"`
	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// TableName returns the table name for the Hotel model
func (Hotel) TableName() string {
	return "hotels"
}

// CountryRequest is the body of country create and update calls. ID is only
// read on update, where it must match the path.
type CountryRequest struct {
	ID        int    `json:"id"`
	Name      string `json:"name" validate:"required"`
	ShortName string `json:"shortName"`
}

// HotelRequest is the body of hotel create and update calls.
type HotelRequest struct {
	ID        int     `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Address   string  `json:"address"`
	Rating    float64 `json:"rating" validate:"gte=0,lte=5"`
	CountryID int     `json:"countryId" validate:"required,gt=0"`
}
