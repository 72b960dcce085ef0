/*
Package registry holds the static office directory for the Southern region
network: every billing location's code, display name, region and service
line, plus the tax-code and purchase-order lookups the reports need.

The directory is compiled in. Locations change rarely and a code that is
absent here still bills (it just reports under a generated name), so a
database table would add churn without adding safety.
*/
package registry

import (
	"fmt"
	"math/rand"
)

// RegionOfficeCode is the office code the region-wise report rolls every
// region up under.
const RegionOfficeCode = 4000

// Office is one directory entry. Codes are not unique on their own; a code
// can appear once per service line.
type Office struct {
	Code   int
	Name   string
	Region string
	LineID int
}

// Resolution is the outcome of resolving an uploaded location code. For a
// line-variant code like 41501 the display code stays 41501 while
// ActualCode holds the base office 4150 and LineNo the variant digit.
type Resolution struct {
	Code       int
	ActualCode int
	Name       string
	Region     string
	LineNo     int
	Known      bool
}

var offices = []Office{
	{4000, "Southern Regional Office", "Southern Region", 10},
	{4000, "Southern Regional Office", "Southern Region", 20},
	{4001, "Arakkonam AFS", "Tamil Nadu State", 10},
	{4002, "Coimbatore AFS", "Tamil Nadu State", 20},
	{4003, "Meenambakkam AFS", "Tamil Nadu State", 30},
	{4004, "Trichy AFS", "Tamil Nadu State", 40},
	{4005, "Sulur AFS", "Tamil Nadu State", 50},
	{4006, "Madurai AFS", "Tamil Nadu State", 60},
	{4007, "Tambaram AFS", "Tamil Nadu State", 70},
	{4028, "Tuticorin AFS", "Tamil Nadu State", 80},
	{4038, "Ramnad AFS", "Tamil Nadu State", 90},
	{4076, "Chennai Drum Plant", "Tamil Nadu State", 100},
	{4100, "Tamil Nadu State Office", "Tamil Nadu State", 110},
	{4101, "Coimbatore DO", "Tamil Nadu State", 111},
	{4102, "Chennai DO", "Tamil Nadu State", 112},
	{4103, "Madurai DO", "Tamil Nadu State", 113},
	{4104, "Salem Divisional Office", "Tamil Nadu State", 114},
	{4105, "Trichy DO", "Tamil Nadu State", 115},
	{4111, "Coimbatore Indane DO", "Tamil Nadu State", 116},
	{4112, "Chennai Indane DO", "Tamil Nadu State", 117},
	{4113, "Madurai Indane DO", "Tamil Nadu State", 118},
	{4114, "Trichy Indane DO", "Tamil Nadu State", 119},
	{4121, "CPCL Manali", "Tamil Nadu State", 120},
	{4125, "Chennai Terminal Foreshore", "Tamil Nadu State", 154},
	{4126, "Madurai Terminal", "Tamil Nadu State", 121},
	{4127, "Chennai Terminal - Korukkupet", "Tamil Nadu State", 122},
	{4129, "Chennai Terminal - Tondiarpet", "Tamil Nadu State", 123},
	{4130, "Tuticorin Terminal", "Tamil Nadu State", 124},
	{4133, "Trichy Terminal", "Tamil Nadu State", 125},
	{4134, "Chennai FST", "Tamil Nadu State", 126},
	{4136, "LBP Chennai", "Tamil Nadu State", 128},
	{4141, "Asanur Terminal", "Tamil Nadu State", 129},
	{4149, "Coimbatore Terminal", "Tamil Nadu State", 130},
	{4150, "Salem Terminal", "Tamil Nadu State", 164},
	{4150, "Salem Terminal", "Tamil Nadu State", 184},
	{4159, "IOCL CO HPC Ennore", "Tamil Nadu State", 131},
	{4167, "IOC Cell RIL Ennore", "Tamil Nadu State", 132},
	{4170, "Chennai POL Jetty", "Tamil Nadu State", 133},
	{4171, "LPG BP Ennore", "Tamil Nadu State", 134},
	{4172, "LPG BP Salem", "Tamil Nadu State", 135},
	{4174, "Pondichery", "Pondichery", 10},
	{4175, "LPG BP Madurai", "Tamil Nadu State", 136},
	{4176, "LPG BP Mayiladuthurai", "Tamil Nadu State", 137},
	{4177, "LPG BP Erode", "Tamil Nadu State", 138},
	{4179, "LPG BP Coimbatore", "Tamil Nadu State", 174},
	{4181, "LPG BP Trichy", "Tamil Nadu State", 139},
	{4183, "LPG BP Chengelpet", "Tamil Nadu State", 140},
	{4184, "LPG BP Mannargudi", "Tamil Nadu State", 141},
	{4185, "Coimbatore Bottling Plant", "Tamil Nadu State", 142},
	{4187, "LPG BP Ilayangudi", "Tamil Nadu State", 143},
	{4188, "LPG BP Tirunelveli", "Tamil Nadu State", 144},
}

// Directory answers office lookups against the compiled-in table.
type Directory struct {
	entries []Office
}

func NewDirectory() *Directory {
	return &Directory{entries: offices}
}

// All returns a copy of every directory entry.
func (d *Directory) All() []Office {
	return append([]Office(nil), d.entries...)
}

// Find returns the first entry matching code, preferring an exact
// (code, lineID) match.
func (d *Directory) Find(code, lineID int) (Office, bool) {
	for _, o := range d.entries {
		if o.Code == code && o.LineID == lineID {
			return o, true
		}
	}
	for _, o := range d.entries {
		if o.Code == code {
			return o, true
		}
	}
	return Office{}, false
}

// Resolve maps an uploaded location code to a directory entry. A code with
// no entry of its own is treated as a line variant of its base office when
// one exists (41501 resolves to 4150, line 1). Codes with no base office
// resolve to a generated placeholder name.
func (d *Directory) Resolve(code, lineID int) Resolution {
	if o, ok := d.Find(code, lineID); ok {
		return Resolution{
			Code:       code,
			ActualCode: o.Code,
			Name:       o.Name,
			Region:     o.Region,
			LineNo:     o.LineID,
			Known:      true,
		}
	}

	base := code / 10 * 10
	for _, o := range d.entries {
		if o.Code == base {
			return Resolution{
				Code:       code,
				ActualCode: base,
				Name:       o.Name,
				Region:     o.Region,
				LineNo:     code - base,
				Known:      true,
			}
		}
	}

	return Resolution{
		Code:       code,
		ActualCode: code,
		Name:       fmt.Sprintf("Location_%d", code),
		LineNo:     lineID,
	}
}

// ResolveLocation is the three-value form the batch processor consumes.
func (d *Directory) ResolveLocation(code, lineID int) (actualCode int, name, region string) {
	r := d.Resolve(code, lineID)
	return r.ActualCode, r.Name, r.Region
}

// =============================================================================
// TAX CODES AND PURCHASE ORDERS
// =============================================================================

var gqCodes = map[int]bool{
	4000: true, 4005: true, 4100: true, 4101: true, 4102: true, 4103: true,
	4104: true, 4105: true, 4111: true, 4112: true, 4113: true, 4114: true,
}

// TaxCode returns the invoice tax code for a location. Regional and state
// offices invoice under GQ, the Chennai drum plant under GR, everything
// else under GP.
func TaxCode(locationCode int) string {
	switch {
	case gqCodes[locationCode]:
		return "GQ"
	case locationCode == 4076:
		return "GR"
	default:
		return "GP"
	}
}

var regionPONumbers = map[string]string{
	"Southern Region":  "70134031",
	"Pondichery":       "70134127",
	"Tamil Nadu State": "70157639",
}

// PONumber returns the purchase-order number the region invoices under.
// Regions outside the fixed mapping get a generated number in the same
// series.
func PONumber(region string) string {
	if po, ok := regionPONumbers[region]; ok {
		return po
	}
	return fmt.Sprintf("70134%03d", rand.Intn(1000))
}
