package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/scry/diagnostic"
)

// JSONEncoder writes one JSON object per file, each on its own line.
type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

type jsonFile struct {
	Path        string              `json:"path"`
	Diagnostics []diagnostic.Report `json:"diagnostics"`
}

func (e *JSONEncoder) Encode(path string, diags []diagnostic.Diagnostic) error {
	text, err := e.MarshalText(path, diags)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText(path string, diags []diagnostic.Diagnostic) ([]byte, error) {
	data := jsonFile{Path: path, Diagnostics: make([]diagnostic.Report, len(diags))}
	for i, d := range diags {
		data.Diagnostics[i] = d.Report()
	}
	return json.Marshal(data)
}
