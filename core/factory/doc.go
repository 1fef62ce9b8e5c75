// Package factory provides a small generic registry used to instantiate
// modules from configuration. A module is described by a type string and a
// map of raw settings; the registered factory decodes the settings into a
// typed struct and returns the implementation.
//
// Metrics sinks and delivery log stores are built this way:
//
//	reg := factory.NewRegistry[logging.LogStore]()
//	reg.Register("sqlite", func(conf map[string]any) (logging.LogStore, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return logging.NewSQLiteStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "d.db"}})
package factory
