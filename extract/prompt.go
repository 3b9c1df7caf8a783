package extract

import (
	"strings"
	"unicode/utf8"
)

// truncationMarker flags that the page text was cut to fit the provider's
// input budget.
const truncationMarker = "…"

// promptTemplate instructs the model to emit a single JSON object with the
// fixed extraction schema. The %s placeholder receives the page text.
const promptTemplate = `You are a data extraction system for medical aesthetic clinic websites.
Analyze the page content below and extract every treatment product offered for sale.

Return ONLY a single JSON object with exactly this structure, no other text:

{
  "clinic_name": "name of the clinic",
  "category": "treatment category of this page, if apparent",
  "description": "one-sentence summary of the page",
  "products": [
    {
      "product_name": "name of the sellable product/package",
      "product_original_price": 50000,
      "product_event_price": 39000,
      "product_description": "short description",
      "treatments": [
        {
          "name": "name of the constituent procedure",
          "dosage": 100,
          "unit": "shot | cc | unit | session",
          "equipments": ["device names used"],
          "medications": ["injected substances"],
          "treatment_type": "laser | injection | skincare | surgical | device",
          "description": "what the procedure does",
          "duration": 30,
          "target_area": ["body areas treated"],
          "benefits": ["expected effects"],
          "recovery_time": "downtime, if stated"
        }
      ]
    }
  ]
}

Rules:
- Prices are integers in KRW with no separators. Omit a price field entirely if the page does not state it. Never invent prices.
- "duration" is minutes as an integer.
- Every product must include at least one treatment describing what is actually performed.
- Omit any field whose value is not stated on the page.
- The page may be in Korean; keep product and treatment names in their original language.

Page content:
%s`

// BuildPrompt renders the extraction prompt for the given page text.
func BuildPrompt(text string) string {
	return strings.Replace(promptTemplate, "%s", text, 1)
}

// Truncate cuts text to at most max bytes, appending the truncation marker
// and never splitting a UTF-8 sequence.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max - len(truncationMarker)
	if cut <= 0 {
		return truncationMarker
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}
