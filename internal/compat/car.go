package compat

import (
	"fmt"
	"math"

	"github.com/autorentar/rental-payments/internal/core/datamodel/car"
)

type CarRow = car.Car

const (
	brandPlaceholder = "[Brand]"
	modelPlaceholder = "[Model]"
)

type CarInsert struct {
	OwnerID       string  `json:"owner_id"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	PricePerDay   float64 `json:"price_per_day"`
	FuelType      *string `json:"fuel_type,omitempty"`
	Transmission  *string `json:"transmission,omitempty"`
	Seats         *int    `json:"seats,omitempty"`
	Doors         *int    `json:"doors,omitempty"`
	Mileage       *int    `json:"mileage,omitempty"`
	Description   *string `json:"description,omitempty"`
	LocationCity  *string `json:"location_city,omitempty"`
	LocationState *string `json:"location_state,omitempty"`
	Status        *string `json:"status,omitempty"`
}

type CarUpdate struct {
	Brand         *string  `json:"brand,omitempty"`
	Model         *string  `json:"model,omitempty"`
	Year          *int     `json:"year,omitempty"`
	PricePerDay   *float64 `json:"price_per_day,omitempty"`
	FuelType      *string  `json:"fuel_type,omitempty"`
	Transmission  *string  `json:"transmission,omitempty"`
	Seats         *int     `json:"seats,omitempty"`
	Doors         *int     `json:"doors,omitempty"`
	Mileage       *int     `json:"mileage,omitempty"`
	Description   *string  `json:"description,omitempty"`
	LocationCity  *string  `json:"location_city,omitempty"`
	LocationState *string  `json:"location_state,omitempty"`
	Status        *string  `json:"status,omitempty"`
}

type CarDTO struct {
	ID               string  `json:"id"`
	OwnerID          string  `json:"owner_id"`
	Title            string  `json:"title"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	Year             int     `json:"year"`
	PricePerDay      float64 `json:"price_per_day"`
	PricePerDayCents int64   `json:"price_per_day_cents"`
	Currency         string  `json:"currency"`
	FuelType         string  `json:"fuel_type"`
	Transmission     *string `json:"transmission,omitempty"`
	Seats            *int    `json:"seats,omitempty"`
	Doors            *int    `json:"doors,omitempty"`
	Mileage          *int    `json:"mileage,omitempty"`
	Description      *string `json:"description,omitempty"`
	LocationCity     *string `json:"location_city,omitempty"`
	LocationState    *string `json:"location_state,omitempty"`
	Status           string  `json:"status"`
}

// CarUpdatePolicies: brand, model, status and fuel_type drop empty values.
var CarUpdatePolicies = map[string]Policy{
	"brand":          Truthy,
	"model":          Truthy,
	"year":           Definedness,
	"price_per_day":  Definedness,
	"fuel_type":      Truthy,
	"transmission":   Definedness,
	"seats":          Definedness,
	"doors":          Definedness,
	"mileage":        Definedness,
	"description":    Definedness,
	"location_city":  Definedness,
	"location_state": Definedness,
	"status":         Truthy,
}

var carUpdateRules = []fieldRule[CarUpdate]{
	{name: "brand", columns: []string{"brand", "brand_text_backup"}, get: func(d CarUpdate) (any, bool) { return opt(d.Brand) }},
	{name: "model", columns: []string{"model", "model_text_backup"}, get: func(d CarUpdate) (any, bool) { return opt(d.Model) }},
	{name: "year", columns: []string{"year"}, get: func(d CarUpdate) (any, bool) { return opt(d.Year) }},
	{name: "price_per_day", columns: []string{"price_per_day"}, get: func(d CarUpdate) (any, bool) { return opt(d.PricePerDay) }},
	{
		name: "fuel_type",
		get:  func(d CarUpdate) (any, bool) { return opt(d.FuelType) },
		apply: func(_ *Mapper, patch Patch, v any) {
			patch["fuel"] = NormalizeFuelType(v.(string))
		},
	},
	{name: "transmission", columns: []string{"transmission"}, get: func(d CarUpdate) (any, bool) { return opt(d.Transmission) }},
	{name: "seats", columns: []string{"seats"}, get: func(d CarUpdate) (any, bool) { return opt(d.Seats) }},
	{name: "doors", columns: []string{"doors"}, get: func(d CarUpdate) (any, bool) { return opt(d.Doors) }},
	{name: "mileage", columns: []string{"mileage"}, get: func(d CarUpdate) (any, bool) { return opt(d.Mileage) }},
	{name: "description", columns: []string{"description"}, get: func(d CarUpdate) (any, bool) { return opt(d.Description) }},
	{name: "location_city", columns: []string{"location_city"}, get: func(d CarUpdate) (any, bool) { return opt(d.LocationCity) }},
	{name: "location_state", columns: []string{"location_state"}, get: func(d CarUpdate) (any, bool) { return opt(d.LocationState) }},
	{name: "status", columns: []string{"status"}, get: func(d CarUpdate) (any, bool) { return opt(d.Status) }},
}

func (m *Mapper) ToDBCarInsert(in CarInsert) *CarRow {
	fuel := car.FuelNafta
	if in.FuelType != nil {
		fuel = NormalizeFuelType(*in.FuelType)
	}
	status := car.StatusDraft
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	return &CarRow{
		OwnerID:         in.OwnerID,
		Title:           fmt.Sprintf("%s %s %d", in.Brand, in.Model, in.Year),
		BrandID:         car.UnknownTaxonID,
		ModelID:         car.UnknownTaxonID,
		Brand:           in.Brand,
		Model:           in.Model,
		BrandTextBackup: in.Brand,
		ModelTextBackup: in.Model,
		Year:            in.Year,
		PricePerDay:     in.PricePerDay,
		Currency:        car.Currency,
		Fuel:            fuel,
		Transmission:    in.Transmission,
		Seats:           in.Seats,
		Doors:           in.Doors,
		Mileage:         in.Mileage,
		Description:     in.Description,
		LocationCity:    in.LocationCity,
		LocationState:   in.LocationState,
		Status:          status,
	}
}

// ToDBCarUpdate maps a partial car. When brand, model or year is present the
// title is rebuilt, with placeholders for the parts the partial leaves empty.
func (m *Mapper) ToDBCarUpdate(in CarUpdate) Patch {
	patch := mapUpdate(m, in, carUpdateRules, CarUpdatePolicies)

	if in.Brand != nil || in.Model != nil || in.Year != nil {
		brand, model, year := brandPlaceholder, modelPlaceholder, m.now().Year()
		if in.Brand != nil && *in.Brand != "" {
			brand = *in.Brand
		}
		if in.Model != nil && *in.Model != "" {
			model = *in.Model
		}
		if in.Year != nil && *in.Year != 0 {
			year = *in.Year
		}
		patch["title"] = fmt.Sprintf("%s %s %d", brand, model, year)
	}
	return patch
}

func FromDBCar(row *CarRow) CarDTO {
	brand := row.Brand
	if brand == "" {
		brand = row.BrandTextBackup
	}
	model := row.Model
	if model == "" {
		model = row.ModelTextBackup
	}
	return CarDTO{
		ID:               row.ID,
		OwnerID:          row.OwnerID,
		Title:            row.Title,
		Brand:            brand,
		Model:            model,
		Year:             row.Year,
		PricePerDay:      row.PricePerDay,
		PricePerDayCents: int64(math.Round(row.PricePerDay * 100)),
		Currency:         row.Currency,
		FuelType:         DenormalizeFuelType(row.Fuel),
		Transmission:     row.Transmission,
		Seats:            row.Seats,
		Doors:            row.Doors,
		Mileage:          row.Mileage,
		Description:      row.Description,
		LocationCity:     row.LocationCity,
		LocationState:    row.LocationState,
		Status:           row.Status,
	}
}
