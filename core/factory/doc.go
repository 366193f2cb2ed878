// Package factory instantiates pluggable modules (metrics sinks, plan
// publishers) from configuration. A module is named by its type string and
// carries a raw settings map that the registered factory decodes with
// Decode.
//
//	reg := factory.NewRegistry[io.Writer]()
//	_ = reg.Register("file", func(conf map[string]any) (io.Writer, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Create(c.Path)
//	})
//	w, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "out.csv"}})
package factory
