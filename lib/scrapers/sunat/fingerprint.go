package sunat

import (
	"encoding/json"
	"maps"
)

// Portal form actions.
const (
	ActionByRuc      = "consPorRuc"
	ActionByDocument = "consPorTipdoc"
	ActionByName     = "consPorRazonSoc"
)

// volatileParams change on every submission or never change at all, so they
// say nothing about the query.
var volatileParams = map[string]bool{
	"token":    true,
	"codigo":   true,
	"numRnd":   true,
	"contexto": true,
	"modo":     true,
}

// Fingerprint is the logical part of a form submission.
type Fingerprint struct {
	params map[string]string
}

func NewFingerprint(action string, extras map[string]string) Fingerprint {
	params := make(map[string]string, len(extras)+1)
	maps.Copy(params, extras)
	params["accion"] = action
	return Fingerprint{params: params}
}

// Key is the fingerprint as a JSON object with sorted keys.
func (f Fingerprint) Key() string {
	stable := make(map[string]string, len(f.params))
	for k, v := range f.params {
		if volatileParams[k] {
			continue
		}
		stable[k] = v
	}
	// encoding/json sorts map keys
	out, _ := json.Marshal(stable)
	return string(out)
}

// Form returns a copy of the parameters ready to be extended with the
// per-submission fields.
func (f Fingerprint) Form() map[string]string {
	return maps.Clone(f.params)
}
