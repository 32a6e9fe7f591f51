package clinvar

import (
	"fmt"
	"strings"

	"github.com/mkoziy/genome/curation/internal/models"
)

const clinGenSource = "ClinGen"

// ToVariant converts a summary into a variant record without a uuid.
func ToVariant(s VariationSummary) (*models.Variant, error) {
	if s.UID == "" {
		return nil, fmt.Errorf("summary has no uid")
	}
	title := strings.TrimSpace(s.Title)
	if title == "" && len(s.VariationSet) > 0 {
		title = strings.TrimSpace(s.VariationSet[0].VariationName)
	}
	if title == "" {
		return nil, fmt.Errorf("variation %s has no title", s.UID)
	}

	uid := s.UID
	v := &models.Variant{
		ClinvarVariantID: &uid,
		PreferredTitle:   title,
		HgvsNames:        hgvsNames(s.VariationSet),
	}
	if car := clinGenAlleleID(s.VariationSet); car != "" {
		v.CarID = &car
	}
	return v, nil
}

func hgvsNames(sets []VariationSet) models.StringArray {
	names := models.StringArray{}
	for _, set := range sets {
		for _, n := range []string{set.VariationName, set.CanonicalSPDI} {
			if n = strings.TrimSpace(n); n != "" {
				names = names.Append(n)
			}
		}
	}
	return names
}

func clinGenAlleleID(sets []VariationSet) string {
	for _, set := range sets {
		for _, x := range set.VariationXrefs {
			if x.DBSource == clinGenSource && IsCarID(x.DBID) {
				return x.DBID
			}
		}
	}
	return ""
}

// IsVariationID reports whether id looks like a ClinVar variation id.
func IsVariationID(id string) bool {
	return id != "" && strings.Trim(id, "0123456789") == ""
}

// IsCarID reports whether id looks like a ClinGen Allele Registry id (CA followed by digits).
func IsCarID(id string) bool {
	return len(id) > 2 && strings.HasPrefix(id, "CA") && IsVariationID(id[2:])
}
