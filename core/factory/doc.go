// Package factory holds the generic registry behind the pluggable parts of
// the pipeline: render formats, metrics sinks and history stores. A module
// is selected by a type string and configured with a raw map that the
// factory decodes into its own settings struct.
//
//	renderers := factory.NewRegistry[render.Renderer]()
//	_ = renderers.Register("csv", func(conf map[string]any) (render.Renderer, error) {
//	    var c struct{ Separator string `json:"separator"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return render.NewCSV(c.Separator), nil
//	})
//	r, err := renderers.Create(factory.ModuleConfig{Type: "csv"})
package factory
