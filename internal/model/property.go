// Package model defines the typed records exchanged between the loaders,
// the recommendation engine, and the exporters.
package model

import "time"

// Category is one of the five coarse usage groupings that selects which
// rule sequence applies to a subject.
type Category string

const (
	CategoryAptOfficetel          Category = "APT_OFFICETEL"
	CategoryRowhouseMulti         Category = "ROWHOUSE_MULTI"
	CategoryRetailOfficeAptFactory Category = "RETAIL_OFFICE_APT_FACTORY"
	CategoryPlantWarehouseEtc     Category = "PLANT_WAREHOUSE_ETC"
	CategoryOtherBig              Category = "OTHER_BIG"
)

// Categories lists every category in its canonical order. The order matters
// for the 5-number rule-map shorthand accepted by the CLI.
var Categories = []Category{
	CategoryAptOfficetel,
	CategoryRowhouseMulti,
	CategoryRetailOfficeAptFactory,
	CategoryPlantWarehouseEtc,
	CategoryOtherBig,
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// RegionScope controls how strictly the region filter matches.
type RegionScope string

const (
	// RegionScopeBig requires province-level equality only.
	RegionScopeBig RegionScope = "big"
	// RegionScopeMid additionally requires city/county/district equality.
	RegionScopeMid RegionScope = "mid"
)

// PropertyRecord is a read-only snapshot of one property, used for both the
// subject and the candidate pool rows. Optional numerics are pointers so that
// "absent" and "zero" stay distinguishable; dirty source values parse to nil
// rather than erroring.
type PropertyRecord struct {
	// Identity.
	CaseNo  string `json:"case_no,omitempty"`
	Address string `json:"address,omitempty"`
	Usage   string `json:"usage,omitempty"`

	// Location. Region fields hold the pre-parsed administrative names:
	// big = province/metropolitan city, mid = city/county/district,
	// small = town/neighborhood.
	RegionBig   string   `json:"region_big,omitempty"`
	RegionMid   string   `json:"region_mid,omitempty"`
	RegionSmall string   `json:"region_small,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`

	// Physical. Raw areas are square meters; AreaBuilding/AreaLand carry the
	// bank-sheet values already converted to pyeong.
	BuildingArea *float64 `json:"building_area,omitempty"`
	LandArea     *float64 `json:"land_area,omitempty"`
	AreaBuilding *float64 `json:"area_building,omitempty"`
	AreaLand     *float64 `json:"area_land,omitempty"`

	// Financial (raw).
	BuildingAppraisalPrice *float64   `json:"building_appraisal_price,omitempty"`
	LandAppraisalPrice     *float64   `json:"land_appraisal_price,omitempty"`
	AppraisalPrice         *float64   `json:"appraisal_price,omitempty"` // candidate-pool total appraisal
	WinningPrice           *float64   `json:"winning_price,omitempty"`
	AuctionDate            *time.Time `json:"auction_date,omitempty"`
	AuctionDays            *int       `json:"auction_days,omitempty"` // days since 1970-01-01

	// Outcome pass-through fields, exported verbatim.
	PopupURL          string   `json:"popup_url,omitempty"`
	NewBuildDate      string   `json:"new_build_date,omitempty"`
	ValuationBaseDate string   `json:"valuation_base_date,omitempty"`
	BigRound          string   `json:"big_round,omitempty"`
	SecondBigPrice    *float64 `json:"second_big_price,omitempty"`

	// Derived (computed, never read from source files).
	BuildingUnitPrice         *float64 `json:"building_unit_price,omitempty"`
	LandUnitPrice             *float64 `json:"land_unit_price,omitempty"`
	TotalAppraisalPrice       *float64 `json:"total_appraisal_price,omitempty"`
	TotalAppraisalPriceByArea *float64 `json:"total_appraisal_price_by_area,omitempty"`

	// Subject bookkeeping from the bank sheet.
	BorrowerSerialNo string `json:"borrower_serial_no,omitempty"`
	PropertySerialNo string `json:"property_serial_no,omitempty"`
	SourceFile       string `json:"source_file,omitempty"`
}

// SerialKey returns the subject's stable identifier for output file naming:
// "<borrower>_<property>" when both serial numbers exist, falling back to the
// borrower serial, then the case number.
func (r *PropertyRecord) SerialKey() string {
	b, p := r.BorrowerSerialNo, r.PropertySerialNo
	switch {
	case b != "" && p != "":
		return b + "_" + p
	case b != "":
		return b
	case r.CaseNo != "":
		return r.CaseNo
	default:
		return "row_unknown"
	}
}

// Recommendation wraps one comparable candidate with the provenance required
// by downstream auditing: which rule and category produced it, for which
// subject, and how far away it is.
type Recommendation struct {
	SubjectCaseNo string         `json:"subject_case_no"`
	RuleName      string         `json:"rule_name"`
	RuleIndex     int            `json:"rule_index"`
	Category      Category       `json:"category"`
	DistanceM     *float64       `json:"distance_m,omitempty"`
	Candidate     PropertyRecord `json:"candidate"`
}
