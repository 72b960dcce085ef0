package registry_test

import (
	"strings"
	"testing"

	"github.com/meridian/amc-billing/registry"
)

func TestResolve_ExactCodeAndLine(t *testing.T) {
	d := registry.NewDirectory()
	r := d.Resolve(4150, 184)
	if !r.Known {
		t.Fatal("expected a known office")
	}
	if r.Name != "Salem Terminal" || r.ActualCode != 4150 || r.LineNo != 184 {
		t.Errorf("got %+v", r)
	}
}

func TestResolve_CodeOnlyFallsBackToFirstLine(t *testing.T) {
	// Line 999 does not exist for 4150; the code-only match wins.
	d := registry.NewDirectory()
	r := d.Resolve(4150, 999)
	if !r.Known || r.Name != "Salem Terminal" {
		t.Errorf("got %+v", r)
	}
}

func TestResolve_BaseCodeVariant(t *testing.T) {
	// GIVEN: Variant code 41501 with no directory entry of its own
	// WHEN: Resolving
	// THEN: Base office 4150 with line number 1

	d := registry.NewDirectory()
	r := d.Resolve(41501, 0)
	if !r.Known {
		t.Fatal("expected the base office to resolve")
	}
	if r.ActualCode != 4150 || r.Name != "Salem Terminal" || r.LineNo != 1 {
		t.Errorf("got %+v", r)
	}
	if r.Code != 41501 {
		t.Errorf("display code = %d, want the uploaded 41501", r.Code)
	}
}

func TestResolve_UnknownCodeGetsPlaceholder(t *testing.T) {
	d := registry.NewDirectory()
	r := d.Resolve(9999, 0)
	if r.Known {
		t.Fatal("expected an unknown office")
	}
	if r.Name != "Location_9999" || r.ActualCode != 9999 {
		t.Errorf("got %+v", r)
	}
}

func TestResolve_RegionAssignment(t *testing.T) {
	d := registry.NewDirectory()
	cases := map[int]string{
		4000: "Southern Region",
		4174: "Pondichery",
		4150: "Tamil Nadu State",
	}
	for code, region := range cases {
		if r := d.Resolve(code, 0); r.Region != region {
			t.Errorf("Resolve(%d) region = %q, want %q", code, r.Region, region)
		}
	}
}

func TestTaxCode(t *testing.T) {
	cases := map[int]string{
		4000: "GQ",
		4104: "GQ",
		4076: "GR",
		4150: "GP",
		9999: "GP",
	}
	for code, want := range cases {
		if got := registry.TaxCode(code); got != want {
			t.Errorf("TaxCode(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestPONumber_FixedRegions(t *testing.T) {
	cases := map[string]string{
		"Southern Region":  "70134031",
		"Pondichery":       "70134127",
		"Tamil Nadu State": "70157639",
	}
	for region, want := range cases {
		if got := registry.PONumber(region); got != want {
			t.Errorf("PONumber(%q) = %q, want %q", region, got, want)
		}
	}
}

func TestPONumber_UnknownRegionGenerated(t *testing.T) {
	po := registry.PONumber("Elsewhere")
	if len(po) != 8 || !strings.HasPrefix(po, "70134") {
		t.Errorf("generated PO = %q, want 70134 prefix and 8 digits", po)
	}
}
