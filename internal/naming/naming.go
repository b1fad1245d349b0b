package naming

import (
	"fmt"
	"strconv"
)

// DefaultArchiveName is used when a batch finishes with no items to derive
// a name from.
const DefaultArchiveName = "photos.zip"

// Synthesize builds an output filename from naming metadata and a sequence
// number: "{code}_{submissionID}_{dateStamp}_{seq}.jpg". The sequence is
// left-zero-padded to at least two digits; wider numbers are never
// truncated. The function performs no validation; inputs are assumed to be
// pre-validated at the form boundary.
func Synthesize(code, submissionID, dateStamp string, seq int) string {
	return fmt.Sprintf("%s_%s_%s_%02d.jpg", code, submissionID, dateStamp, seq)
}

// ArchiveName derives the ZIP filename from the first batch item's metadata.
// Empty metadata falls back to DefaultArchiveName.
func ArchiveName(code, submissionID string) string {
	if code == "" || submissionID == "" {
		return DefaultArchiveName
	}
	return fmt.Sprintf("%s_%s.zip", code, submissionID)
}

// ValidateMetadata checks naming metadata the way the settings form does:
// the submission ID must be all-numeric, the date stamp an 8-digit YYYYMMDD
// string, and the quality level within the 0-10 scale. The industry code
// must be non-empty; membership in the registry is checked separately.
func ValidateMetadata(code, submissionID, dateStamp string, quality int) error {
	if code == "" {
		return fmt.Errorf("industry code is required")
	}
	if submissionID == "" {
		return fmt.Errorf("submission id is required")
	}
	if !allDigits(submissionID) {
		return fmt.Errorf("submission id must be numeric: %q", submissionID)
	}
	if len(dateStamp) != 8 || !allDigits(dateStamp) {
		return fmt.Errorf("date stamp must be an 8-digit YYYYMMDD string: %q", dateStamp)
	}
	if month, _ := strconv.Atoi(dateStamp[4:6]); month < 1 || month > 12 {
		return fmt.Errorf("date stamp has invalid month: %q", dateStamp)
	}
	if day, _ := strconv.Atoi(dateStamp[6:8]); day < 1 || day > 31 {
		return fmt.Errorf("date stamp has invalid day: %q", dateStamp)
	}
	if quality < 0 || quality > 10 {
		return fmt.Errorf("quality level must be between 0 and 10: %d", quality)
	}
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
