package render

import (
	"encoding/json"
	"io"

	"github.com/kilianp07/manmonths/core/model"
	"github.com/kilianp07/manmonths/core/report"
)

// JSON writes the report together with every project in input order.
type JSON struct {
	Indent bool
}

type jsonDocument struct {
	Report   report.Report    `json:"report"`
	Projects []*model.Project `json:"projects"`
	Warnings []model.Warning  `json:"warnings"`
}

func (JSON) Extension() string { return "json" }

func (j JSON) Render(w io.Writer, res *model.Result) error {
	doc := jsonDocument{
		Report:   report.Build(res),
		Projects: res.ProjectsByID(),
		Warnings: res.Warnings,
	}
	if doc.Warnings == nil {
		doc.Warnings = []model.Warning{}
	}
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
