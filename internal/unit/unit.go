// Package unit defines SI base units and the physical constants used
// throughout the engine. All quantities elsewhere in the code are expressed
// in these units (meter, second, kilogram ...), so a position is always in
// meters and an energy always in joules regardless of how it was configured.
package unit

import "math"

// SI base units.
const (
	Meter    = 1.0
	Second   = 1.0
	Kilogram = 1.0
	Ampere   = 1.0
	Kelvin   = 1.0
)

// Derived units.
const (
	Newton  = Kilogram * Meter / Second / Second
	Joule   = Newton * Meter
	Tesla   = Newton / Ampere / Meter
	Volt    = Kilogram * Meter * Meter / Ampere / Second / Second / Second
	Coulomb = Ampere * Second
)

// Physical constants (CODATA 2006).
const (
	EPlus        = 1.602176487e-19 * Ampere * Second
	CLight       = 2.99792458e8 * Meter / Second
	CSquared     = CLight * CLight
	MassProton   = 1.67262158e-27 * Kilogram
	MassNeutron  = 1.67492735e-27 * Kilogram
	MassElectron = 9.10938291e-31 * Kilogram
	KBoltzmann   = 1.3806488e-23 * Joule / Kelvin
)

// Magnetic field strengths.
const (
	Gauss      = 1e-4 * Tesla
	MicroGauss = 1e-6 * Gauss
	NanoGauss  = 1e-9 * Gauss
)

// Electron volts.
const (
	ElectronVolt = EPlus * Joule
	KeV          = 1e3 * ElectronVolt
	MeV          = 1e6 * ElectronVolt
	GeV          = 1e9 * ElectronVolt
	TeV          = 1e12 * ElectronVolt
	PeV          = 1e15 * ElectronVolt
	EeV          = 1e18 * ElectronVolt
)

// Astronomical distances (IAU 2012/2015).
const (
	AU         = 149597870700 * Meter
	LightYear  = 365.25 * 24 * 3600 * Second * CLight
	Parsec     = 648000 / math.Pi * AU
	KiloParsec = 1e3 * Parsec
	MegaParsec = 1e6 * Parsec
)
