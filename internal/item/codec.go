package item

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
)

// Export serializes it as indented JSON.
func Export(it Item) ([]byte, error) {
	data, err := json.MarshalIndent(Copy(it), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export item %s: %w", it.ID, err)
	}
	return data, nil
}

// Import parses a JSON item, validates it and assigns a fresh id.
// Validation failures are returned together as ir.ValidationErrors.
func Import(data []byte, ids ident.Generator) (Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return Item{}, fmt.Errorf("import item: %w", err)
	}
	if errs := validate(it); len(errs) > 0 {
		return Item{}, fmt.Errorf("import item: %w", ir.ValidationErrors(errs))
	}
	it = normalize(it)
	it.ID = ids.NewID()
	return it, nil
}

// Document returns the JSON document view of it, used for path lookups.
// It fails only when a value is not representable in JSON (NaN, infinities).
func Document(it Item) (ir.Value, error) {
	doc, err := ir.CanonicalDocument(normalize(it))
	if err != nil {
		return ir.Absent, fmt.Errorf("item %s document: %w", it.ID, err)
	}
	return doc, nil
}
