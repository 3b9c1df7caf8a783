package clinscrape

// TreatmentType classifies the modality of a treatment.
type TreatmentType string

// Known treatment modalities. The extraction prompt constrains the model to
// these values; anything else is dropped during mapping.
const (
	TreatmentLaser     TreatmentType = "laser"
	TreatmentInjection TreatmentType = "injection"
	TreatmentSkincare  TreatmentType = "skincare"
	TreatmentSurgical  TreatmentType = "surgical"
	TreatmentDevice    TreatmentType = "device"
)

// Valid reports whether t is one of the known treatment modalities.
func (t TreatmentType) Valid() bool {
	switch t {
	case TreatmentLaser, TreatmentInjection, TreatmentSkincare, TreatmentSurgical, TreatmentDevice:
		return true
	}
	return false
}

// Treatment is one constituent procedure within a Product. It has no
// identity of its own and is owned exclusively by its Product.
type Treatment struct {
	Name        string        `json:"name"`
	Dosage      *float64      `json:"dosage,omitempty"`
	Unit        string        `json:"unit,omitempty"`
	Equipments  []string      `json:"equipments,omitempty"`
	Medications []string      `json:"medications,omitempty"`
	Type        TreatmentType `json:"treatment_type,omitempty"`
	Description string        `json:"description,omitempty"`
	// Duration is the procedure time in minutes.
	Duration     *int     `json:"duration,omitempty"`
	TargetAreas  []string `json:"target_area,omitempty"`
	Benefits     []string `json:"benefits,omitempty"`
	RecoveryTime string   `json:"recovery_time,omitempty"`
}

// Validate returns an error if the treatment contains invalid fields.
func (t *Treatment) Validate() error {
	if t.Name == "" {
		return Errorf(EINVALID, "treatment name required")
	}
	return nil
}

// Product is one sellable offering extracted from a clinic page.
// Prices are whole currency units (KRW in practice); nil means the page did
// not state the price, which is distinct from zero.
type Product struct {
	SourceURL     string       `json:"source_url"`
	SourceChannel string       `json:"source_channel"`
	ClinicName    string       `json:"clinic_name"`
	Name          string       `json:"product_name"`
	OriginalPrice *int         `json:"product_original_price,omitempty"`
	EventPrice    *int         `json:"product_event_price,omitempty"`
	Description   string       `json:"product_description,omitempty"`
	Category      string       `json:"category,omitempty"`
	Treatments    []*Treatment `json:"treatments"`
}

// Validate returns an error if the product contains invalid fields.
// A product with zero treatments is not meaningful and fails validation.
func (p *Product) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "product name required")
	}
	if len(p.Treatments) == 0 {
		return Errorf(EINVALID, "product %q has no treatments", p.Name)
	}
	for _, t := range p.Treatments {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the deduplication identity of the product: the exact
// (clinic name, product name) pair, case-sensitive.
func (p *Product) Key() ProductKey {
	return ProductKey{Clinic: p.ClinicName, Product: p.Name}
}

// ProductKey identifies a product for deduplication across pages and
// interaction steps within a run.
type ProductKey struct {
	Clinic  string
	Product string
}
