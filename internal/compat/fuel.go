package compat

import "github.com/autorentar/rental-payments/internal/core/datamodel/car"

// App-level fuel vocabulary.
const (
	FuelGasoline = "gasoline"
	FuelDiesel   = "diesel"
	FuelElectric = "electric"
	FuelHybrid   = "hybrid"
)

var fuelToStorage = map[string]string{
	FuelGasoline: car.FuelNafta,
	FuelDiesel:   car.FuelGasoil,
	FuelElectric: car.FuelElectrico,
	FuelHybrid:   car.FuelHibrido,
}

var fuelFromStorage = map[string]string{
	car.FuelNafta:     FuelGasoline,
	car.FuelGasoil:    FuelDiesel,
	car.FuelElectrico: FuelElectric,
	car.FuelHibrido:   FuelHybrid,
}

// NormalizeFuelType maps an app fuel value to the storage vocabulary.
// Anything unrecognized, storage values included, becomes nafta.
func NormalizeFuelType(fuel string) string {
	if v, ok := fuelToStorage[fuel]; ok {
		return v
	}
	return car.FuelNafta
}

// DenormalizeFuelType is the reverse table; unknown storage values read as gasoline.
func DenormalizeFuelType(fuel string) string {
	if v, ok := fuelFromStorage[fuel]; ok {
		return v
	}
	return FuelGasoline
}
