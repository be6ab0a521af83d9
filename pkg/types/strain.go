package types

import "strings"

// Strain is a named cultivar in the catalog.
type Strain struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Batch is a named planting cohort.
type Batch struct {
	ID          int64  `json:"id"`
	BatchCode   string `json:"batch_code"`
	Description string `json:"description"`
	StartedDate string `json:"started_date"`
}

// FindStrainByName returns the strain whose name equals name exactly.
func FindStrainByName(strains []Strain, name string) (Strain, bool) {
	for _, s := range strains {
		if s.Name == name {
			return s, true
		}
	}
	return Strain{}, false
}

// DuplicateStrainName reports whether another strain (not excludeID)
// already uses name. Comparison is trimmed and case-sensitive. The check is
// advisory; the backend enforces uniqueness.
func DuplicateStrainName(strains []Strain, name string, excludeID int64) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, s := range strains {
		if s.ID != excludeID && strings.TrimSpace(s.Name) == name {
			return true
		}
	}
	return false
}

// DuplicateBatchCode reports whether another batch (not excludeID) already
// uses code, with the same comparison rules as DuplicateStrainName.
func DuplicateBatchCode(batches []Batch, code string, excludeID int64) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, b := range batches {
		if b.ID != excludeID && strings.TrimSpace(b.BatchCode) == code {
			return true
		}
	}
	return false
}
