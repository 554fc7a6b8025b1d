// Package extract turns "Consulta RUC" result pages into records. Every
// heuristic here is best effort: a field that cannot be recovered is left nil
// rather than reported as an error.
package extract

// Record is a taxpayer as shown on a detail page. A nil field was not found
// on the page.
type Record struct {
	RUC          *string `json:"ruc,omitempty"`
	Name         *string `json:"razonsocial,omitempty"`
	Status       *string `json:"estado,omitempty"`
	Condition    *string `json:"condicion,omitempty"`
	Address      *string `json:"direccion,omitempty"`
	Location     *string `json:"ubicacion,omitempty"`
	DocumentType *string `json:"documento,omitempty"`
	TaxpayerType *string `json:"contribuyente,omitempty"`
}

// Found reports whether the page identified a taxpayer at all.
func (r Record) Found() bool {
	return r.RUC != nil
}

// WithLocation returns a copy of r with its location replaced. A nil
// location leaves the copy untouched.
func (r Record) WithLocation(location *string) Record {
	if location == nil {
		return r
	}
	loc := *location
	r.Location = &loc
	return r
}

// SearchResult is one row of a result list page.
type SearchResult struct {
	RUC      string  `json:"ruc"`
	Name     *string `json:"razonsocial,omitempty"`
	Location *string `json:"ubicacion,omitempty"`
	Status   *string `json:"estado,omitempty"`
}
