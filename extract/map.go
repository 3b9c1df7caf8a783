package extract

import (
	"strconv"
	"strings"

	"github.com/clinscrape/clinscrape"
)

// mapPayload converts a parsed response into product records. Malformed
// entries are skipped, never errors: a product needs a non-empty name and at
// least one named treatment, everything else is optional.
func mapPayload(p *payload, sourceURL string) []*clinscrape.Product {
	clinic := strings.TrimSpace(p.ClinicName)
	if clinic == "" {
		clinic = ClinicNameFromURL(sourceURL)
	}

	products := make([]*clinscrape.Product, 0, len(p.Products))
	for _, pp := range p.Products {
		name := strings.TrimSpace(pp.Name)
		if name == "" {
			continue
		}

		var treatments []*clinscrape.Treatment
		for _, tp := range pp.Treatments {
			if t := mapTreatment(tp); t != nil {
				treatments = append(treatments, t)
			}
		}
		if len(treatments) == 0 {
			continue
		}

		products = append(products, &clinscrape.Product{
			SourceURL:     sourceURL,
			ClinicName:    clinic,
			Name:          name,
			OriginalPrice: parsePrice(pp.OriginalPrice),
			EventPrice:    parsePrice(pp.EventPrice),
			Description:   strings.TrimSpace(pp.Description),
			Category:      strings.TrimSpace(p.Category),
			Treatments:    treatments,
		})
	}
	return products
}

func mapTreatment(tp treatmentPayload) *clinscrape.Treatment {
	name := strings.TrimSpace(tp.Name)
	if name == "" {
		return nil
	}

	t := &clinscrape.Treatment{
		Name:         name,
		Dosage:       parseFloat(tp.Dosage),
		Unit:         strings.TrimSpace(tp.Unit),
		Equipments:   toStringSlice(tp.Equipments),
		Medications:  toStringSlice(tp.Medications),
		Description:  strings.TrimSpace(tp.Description),
		Duration:     parseInt(tp.Duration),
		TargetAreas:  toStringSlice(tp.TargetAreas),
		Benefits:     toStringSlice(tp.Benefits),
		RecoveryTime: strings.TrimSpace(tp.RecoveryTime),
	}
	if typ := clinscrape.TreatmentType(strings.ToLower(strings.TrimSpace(tp.Type))); typ.Valid() {
		t.Type = typ
	}
	return t
}

// parsePrice accepts a numeric JSON value or a string carrying digits
// ("50,000원", "₩39000"). Absent or unparseable stays nil, never zero.
func parsePrice(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, n)
		if digits == "" {
			return nil
		}
		if i, err := strconv.Atoi(digits); err == nil {
			return &i
		}
	}
	return nil
}

func parseInt(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

func parseFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

// toStringSlice coerces a JSON value that should be a string array but may
// arrive as a single string or a mixed array.
func toStringSlice(v any) []string {
	switch s := v.(type) {
	case string:
		if t := strings.TrimSpace(s); t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, item := range s {
			if str, ok := item.(string); ok {
				if t := strings.TrimSpace(str); t != "" {
					out = append(out, t)
				}
			}
		}
		return out
	}
	return nil
}
