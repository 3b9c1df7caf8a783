package fs

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/clinscrape/clinscrape"
)

// WriteProductsJSON writes products as a pretty-printed JSON array.
func WriteProductsJSON(path string, products []*clinscrape.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// runExport is the JSON export envelope: run metadata plus the products.
type runExport struct {
	Run      *clinscrape.Run       `json:"run"`
	Products []*clinscrape.Product `json:"products"`
}

// WriteRunJSON writes a run and its products as one pretty-printed JSON
// document, so an exported file is self-describing (provider, model,
// timestamps, counts).
func WriteRunJSON(path string, run *clinscrape.Run, products []*clinscrape.Product) error {
	data, err := json.MarshalIndent(runExport{Run: run, Products: products}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// csvHeader is the flattened export shape: one row per treatment, product
// fields repeated, list fields joined with "; ".
var csvHeader = []string{
	"clinic_name", "product_name", "original_price", "event_price",
	"category", "source_channel", "source_url",
	"treatment_name", "treatment_type", "dosage", "unit",
	"equipments", "medications", "duration_min", "target_area",
	"benefits", "recovery_time",
}

// WriteProductsCSV writes products flattened to one row per treatment.
func WriteProductsCSV(path string, products []*clinscrape.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range products {
		for _, t := range p.Treatments {
			row := []string{
				p.ClinicName,
				p.Name,
				intOrEmpty(p.OriginalPrice),
				intOrEmpty(p.EventPrice),
				p.Category,
				p.SourceChannel,
				p.SourceURL,
				t.Name,
				string(t.Type),
				floatOrEmpty(t.Dosage),
				t.Unit,
				strings.Join(t.Equipments, "; "),
				strings.Join(t.Medications, "; "),
				intOrEmpty(t.Duration),
				strings.Join(t.TargetAreas, "; "),
				strings.Join(t.Benefits, "; "),
				t.RecoveryTime,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
