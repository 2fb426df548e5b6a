package car

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusDeleted  = "deleted"
	UnknownTaxonID = "unknown"
	Currency       = "ARS"
)

// Storage vocabulary for the fuel column.
const (
	FuelNafta     = "nafta"
	FuelGasoil    = "gasoil"
	FuelElectrico = "electrico"
	FuelHibrido   = "hibrido"
)

// Car is the cars storage row. PricePerDay is decimal currency, not cents.
type Car struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id,omitempty"`
	OwnerID         string    `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	BrandID         string    `gorm:"column:brand_id;not null" json:"brand_id"`
	ModelID         string    `gorm:"column:model_id;not null" json:"model_id"`
	Brand           string    `gorm:"column:brand" json:"brand"`
	Model           string    `gorm:"column:model" json:"model"`
	BrandTextBackup string    `gorm:"column:brand_text_backup" json:"brand_text_backup"`
	ModelTextBackup string    `gorm:"column:model_text_backup" json:"model_text_backup"`
	Year            int       `gorm:"column:year;not null" json:"year"`
	PricePerDay     float64   `gorm:"column:price_per_day;not null" json:"price_per_day"`
	Currency        string    `gorm:"column:currency;not null" json:"currency"`
	Fuel            string    `gorm:"column:fuel;not null" json:"fuel"`
	Transmission    *string   `gorm:"column:transmission" json:"transmission,omitempty"`
	Seats           *int      `gorm:"column:seats" json:"seats,omitempty"`
	Doors           *int      `gorm:"column:doors" json:"doors,omitempty"`
	Mileage         *int      `gorm:"column:mileage" json:"mileage,omitempty"`
	Description     *string   `gorm:"column:description" json:"description,omitempty"`
	LocationCity    *string   `gorm:"column:location_city" json:"location_city,omitempty"`
	LocationState   *string   `gorm:"column:location_state" json:"location_state,omitempty"`
	Status          string    `gorm:"column:status;not null" json:"status"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"-"`
}

func (Car) TableName() string {
	return "cars"
}

func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
