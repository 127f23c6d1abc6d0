package enums

import "fmt"

// ListingStatus maps to the listing_status enum in Postgres.
type ListingStatus string

const (
	ListingStatusDraft           ListingStatus = "draft"
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusApproved        ListingStatus = "approved"
	ListingStatusLive            ListingStatus = "live"
	ListingStatusSold            ListingStatus = "sold"
	ListingStatusRejected        ListingStatus = "rejected"
	ListingStatusRemoved         ListingStatus = "removed"
)

var validListingStatuses = []ListingStatus{
	ListingStatusDraft,
	ListingStatusPendingApproval,
	ListingStatusApproved,
	ListingStatusLive,
	ListingStatusSold,
	ListingStatusRejected,
	ListingStatusRemoved,
}

// IsValid reports whether the value matches the canonical listing_status enum.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// ListingCategory maps to the listing_category enum in Postgres.
type ListingCategory string

const (
	ListingCategoryGemstone          ListingCategory = "gemstone"
	ListingCategoryPreciousMetal     ListingCategory = "precious_metal"
	ListingCategoryIndustrialMineral ListingCategory = "industrial_mineral"
	ListingCategoryRareEarth         ListingCategory = "rare_earth"
	ListingCategoryCrystal           ListingCategory = "crystal"
	ListingCategoryOre               ListingCategory = "ore"
	ListingCategoryOther             ListingCategory = "other"
)

var validListingCategories = []ListingCategory{
	ListingCategoryGemstone,
	ListingCategoryPreciousMetal,
	ListingCategoryIndustrialMineral,
	ListingCategoryRareEarth,
	ListingCategoryCrystal,
	ListingCategoryOre,
	ListingCategoryOther,
}

func (c ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseListingCategory converts raw input into ListingCategory.
func ParseListingCategory(value string) (ListingCategory, error) {
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}

// QuantityUnit maps to the quantity_unit enum in Postgres.
type QuantityUnit string

const (
	UnitGrams     QuantityUnit = "grams"
	UnitKilograms QuantityUnit = "kilograms"
	UnitTonnes    QuantityUnit = "tonnes"
	UnitCarats    QuantityUnit = "carats"
	UnitPieces    QuantityUnit = "pieces"
)

var validQuantityUnits = []QuantityUnit{
	UnitGrams,
	UnitKilograms,
	UnitTonnes,
	UnitCarats,
	UnitPieces,
}

func (u QuantityUnit) IsValid() bool {
	for _, candidate := range validQuantityUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// Countable reports whether quantities in this unit must be whole numbers.
func (u QuantityUnit) Countable() bool {
	return u == UnitPieces
}

// ParseQuantityUnit converts raw input into QuantityUnit.
func ParseQuantityUnit(value string) (QuantityUnit, error) {
	for _, candidate := range validQuantityUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quantity unit %q", value)
}
