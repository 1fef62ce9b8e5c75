package factory

import "testing"

type store struct {
	Path    string
	MaxSize int
}

type storeConf struct {
	Path      string `json:"path"`
	MaxSizeMB int    `json:"max_size_mb"`
}

func newStoreRegistry(t *testing.T) *Registry[*store] {
	t.Helper()
	reg := NewRegistry[*store]()
	if err := reg.Register("jsonl", func(conf map[string]any) (*store, error) {
		var c storeConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &store{Path: c.Path, MaxSize: c.MaxSizeMB}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegistryCreateDecodesConf(t *testing.T) {
	reg := newStoreRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "d.jsonl", "max_size_mb": 5}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Path != "d.jsonl" || inst.MaxSize != 5 {
		t.Fatalf("unexpected instance %+v", inst)
	}
}

func TestDecodeAcceptsStringNumbers(t *testing.T) {
	var c storeConf
	if err := Decode(map[string]any{"max_size_mb": "12"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.MaxSizeMB != 12 {
		t.Fatalf("expected 12 got %d", c.MaxSizeMB)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := newStoreRegistry(t)
	if err := reg.Register("jsonl", func(map[string]any) (*store, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("sqlite", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "kafka"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "jsonl" {
		t.Fatalf("unexpected types %v", got)
	}
}
