package tariff

// Australian electricity network distributors.
const (
	ProviderEvoenergy       = "evoenergy"
	ProviderErgonEnergy     = "ergon_energy"
	ProviderEnergex         = "energex"
	ProviderAusgrid         = "ausgrid"
	ProviderEssentialEnergy = "essential_energy"
	ProviderEndeavourEnergy = "endeavour_energy"
	ProviderAusnetServices  = "ausnet_services"
	ProviderPowercor        = "powercor"
	ProviderJemena          = "jemena"
	ProviderCitipower       = "citipower"
	ProviderUnitedEnergy    = "united_energy"
	ProviderTasnetworks     = "tasnetworks"
)

// Providers lists all known network providers.
var Providers = []string{
	ProviderEvoenergy,
	ProviderErgonEnergy,
	ProviderEnergex,
	ProviderAusgrid,
	ProviderEssentialEnergy,
	ProviderEndeavourEnergy,
	ProviderAusnetServices,
	ProviderPowercor,
	ProviderJemena,
	ProviderCitipower,
	ProviderUnitedEnergy,
	ProviderTasnetworks,
}

var providerStates = map[string]string{
	ProviderEvoenergy:       "ACT",
	ProviderErgonEnergy:     "QLD",
	ProviderEnergex:         "QLD",
	ProviderAusgrid:         "NSW",
	ProviderEssentialEnergy: "NSW",
	ProviderEndeavourEnergy: "NSW",
	ProviderAusnetServices:  "VIC",
	ProviderPowercor:        "VIC",
	ProviderJemena:          "VIC",
	ProviderCitipower:       "VIC",
	ProviderUnitedEnergy:    "VIC",
	ProviderTasnetworks:     "TAS",
}

// ProviderState returns the state a distributor operates in, or
// "Unknown" for unrecognised names.
func ProviderState(name string) string {
	if state, ok := providerStates[name]; ok {
		return state
	}
	return "Unknown"
}

// ValidProvider reports whether the provider name is known.
func ValidProvider(name string) bool {
	for _, provider := range Providers {
		if provider == name {
			return true
		}
	}
	return false
}
