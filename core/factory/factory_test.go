package factory

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type sample struct{ A int }

type sampleConf struct {
	A       int           `json:"a"`
	Timeout time.Duration `json:"timeout"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	_, err := reg.Create(ModuleConfig{Type: "y"})
	if err == nil || !strings.Contains(err.Error(), "[x]") {
		t.Fatalf("expected unknown type error listing known types, got %v", err)
	}

	boom := errors.New("boom")
	_ = reg.Register("fail", func(map[string]any) (int, error) { return 0, boom })
	if _, err := reg.Create(ModuleConfig{Type: "fail"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped factory error, got %v", err)
	}
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"influx", "nop", "prometheus"} {
		_ = reg.Register(n, func(map[string]any) (int, error) { return 0, nil })
	}
	got := reg.Types()
	if strings.Join(got, ",") != "influx,nop,prometheus" {
		t.Fatalf("unexpected types %v", got)
	}
}

func TestDecode_WeakTypes(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "7", "timeout": "1500ms"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.A != 7 || c.Timeout != 1500*time.Millisecond {
		t.Fatalf("unexpected %+v", c)
	}
}
