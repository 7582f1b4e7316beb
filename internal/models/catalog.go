package models

import "strings"

// Bill categories the service negotiates. The wizard renders these as the
// category select; the shared validation rejects anything else.
const (
	CategoryInternet      = "internet"
	CategoryCable         = "cable"
	CategoryWireless      = "wireless"
	CategoryUtilities     = "utilities"
	CategorySubscriptions = "subscriptions"
	CategoryInsurance     = "insurance"
	CategorySecurity      = "security"
	CategoryFitness       = "fitness"
)

// BillCategories is the ordered list shown in the wizard.
var BillCategories = []string{
	CategoryInternet,
	CategoryCable,
	CategoryWireless,
	CategoryUtilities,
	CategorySubscriptions,
	CategoryInsurance,
	CategorySecurity,
	CategoryFitness,
}

// ProvidersByCategory holds the suggested providers per category. The list is
// a convenience for the wizard select; free-text providers are accepted too.
var ProvidersByCategory = map[string][]string{
	CategoryInternet:      {"Xfinity", "Spectrum", "AT&T", "Verizon Fios", "CenturyLink", "Cox", "Frontier", "Optimum"},
	CategoryCable:         {"Xfinity", "Spectrum", "DIRECTV", "DISH", "Cox", "Optimum"},
	CategoryWireless:      {"Verizon", "AT&T", "T-Mobile", "US Cellular", "Cricket", "Boost Mobile"},
	CategoryUtilities:     {"Duke Energy", "PG&E", "Con Edison", "National Grid", "Dominion Energy", "Georgia Power"},
	CategorySubscriptions: {"Netflix", "Hulu", "Disney+", "Spotify", "SiriusXM", "Audible"},
	CategoryInsurance:     {"GEICO", "Progressive", "State Farm", "Allstate", "Liberty Mutual", "Farmers"},
	CategorySecurity:      {"ADT", "Vivint", "SimpliSafe", "Ring", "Brinks"},
	CategoryFitness:       {"Planet Fitness", "LA Fitness", "24 Hour Fitness", "Equinox", "Crunch"},
}

// IsBillCategory reports whether s is a known category (case-insensitive).
func IsBillCategory(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range BillCategories {
		if s == c {
			return true
		}
	}
	return false
}

// usStates maps postal codes to state names, including DC.
var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// stateNames is the reverse index, lower-cased name -> code.
var stateNames = func() map[string]string {
	m := make(map[string]string, len(usStates))
	for code, name := range usStates {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// IsUSState accepts either a state name or a two-letter code,
// case-insensitively.
func IsUSState(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		_, ok := usStates[strings.ToUpper(s)]
		return ok
	}
	_, ok := stateNames[strings.ToLower(s)]
	return ok
}

// USStates returns code -> name for the wizard's state select.
func USStates() map[string]string {
	out := make(map[string]string, len(usStates))
	for code, name := range usStates {
		out[code] = name
	}
	return out
}
