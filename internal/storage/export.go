package storage

import (
	"encoding/json"
	"io"

	"github.com/merement/Dice/internal/optim"
)

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	Meta          RunMetadata   `json:"meta"`
	Configuration []int8        `json:"configuration"`
	Relaxed       []float64     `json:"relaxed,omitempty"`
	History       []optim.Round `json:"history"`
}

func ExportJSON(w io.Writer, meta RunMetadata, res *optim.Result) error {
	data := ExportData{
		Meta:          meta,
		Configuration: res.Configuration,
		Relaxed:       res.Relaxed,
		History:       res.History,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
