package octopus

import "sort"

// RegionNames maps DNO region codes to their distribution areas. Regions
// are static; no API call is needed to list them.
var RegionNames = map[string]string{
	"A": "Eastern England",
	"B": "East Midlands",
	"C": "London",
	"D": "Merseyside and Northern Wales",
	"E": "West Midlands",
	"F": "North Eastern England",
	"G": "North Western England",
	"H": "Southern England",
	"J": "South Eastern England",
	"K": "Southern Wales",
	"L": "South Western England",
	"M": "Yorkshire",
	"N": "Southern Scotland",
	"P": "Northern Scotland",
}

// Region is one entry of the region list.
type Region struct {
	Code string `json:"region"`
	Name string `json:"name"`
}

// Regions returns all regions sorted by code.
func Regions() []Region {
	out := make([]Region, 0, len(RegionNames))
	for code, name := range RegionNames {
		out = append(out, Region{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// RegionCodes returns all region codes sorted ascending.
func RegionCodes() []string {
	regions := Regions()
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Code
	}
	return out
}

// ValidRegion reports whether code names a known region.
func ValidRegion(code string) bool {
	_, ok := RegionNames[code]
	return ok
}
