package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// WriteJSON writes v as two-space-indented JSON. HTML escaping is off
// so ampersands and brackets in document titles stay readable.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// WriteJSONFile writes v as indented JSON at path.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	return WriteJSON(f, v)
}
