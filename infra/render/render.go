// Package render turns an allocation result into output documents. Each
// format is a Renderer registered by name so the configured list of
// formats can be built with the module factory.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kilianp07/manmonths/core/factory"
	"github.com/kilianp07/manmonths/core/model"
)

// OutputSuffix is appended to the input base name of every output file.
const OutputSuffix = "_ΚΑΤΑΝΟΜΗ ΑΜ"

// Renderer writes one output format.
type Renderer interface {
	Render(w io.Writer, res *model.Result) error
	Extension() string
}

var registry = factory.NewRegistry[Renderer]()

// Register adds a renderer factory identified by name.
func Register(name string, f factory.Factory[Renderer]) error {
	return registry.Register(name, f)
}

// Names lists the registered formats.
func Names() []string { return registry.Names() }

// New builds the renderer described by cfg.
func New(cfg factory.ModuleConfig) (Renderer, error) {
	return registry.Create(cfg)
}

// NewAll builds one renderer per entry of cfgs, preserving order.
func NewAll(cfgs []factory.ModuleConfig) ([]Renderer, error) {
	out := make([]Renderer, 0, len(cfgs))
	for _, c := range cfgs {
		r, err := New(c)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", c.Type, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// OutputName returns the output file name derived from the input path:
// "{base}_ΚΑΤΑΝΟΜΗ ΑΜ.{ext}".
func OutputName(input, ext string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + OutputSuffix + "." + strings.TrimPrefix(ext, ".")
}

func init() {
	_ = Register("xlsx", func(conf map[string]any) (Renderer, error) {
		var c XLSXConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewXLSX(c), nil
	})
	_ = Register("csv", func(map[string]any) (Renderer, error) {
		return CSV{}, nil
	})
	_ = Register("json", func(conf map[string]any) (Renderer, error) {
		var c struct {
			Indent bool `json:"indent"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return JSON{Indent: c.Indent}, nil
	})
}
