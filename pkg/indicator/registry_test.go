package indicator

import (
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("sma_20", func() (Calculator, error) {
		return NewSMA(20)
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	calc, err := registry.Create("sma_20")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if calc.Name() != "sma_20" {
		t.Errorf("expected name sma_20, got %s", calc.Name())
	}

	// Each Create returns an independent instance
	other, _ := registry.Create("sma_20")
	feedCloses(calc, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20})
	if other.IsReady() {
		t.Error("instances must not share state")
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()
	factory := func() (Calculator, error) { return NewSMA(5) }

	if err := registry.Register("sma_5", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.Register("sma_5", factory); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestRegistry_Validation(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("", func() (Calculator, error) { return NewSMA(5) }); err == nil {
		t.Error("expected error for empty name")
	}
	if err := registry.Register("x", nil); err == nil {
		t.Error("expected error for nil factory")
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Create("missing"); err == nil {
		t.Error("expected error for unknown indicator")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"rsi_14", "ema_12", "sma_20"} {
		name := name
		_ = registry.Register(name, func() (Calculator, error) { return NewSMA(5) })
	}

	names := registry.List()
	want := []string{"ema_12", "rsi_14", "sma_20"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestRegistry_UnregisterAndClear(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register("sma_5", func() (Calculator, error) { return NewSMA(5) })

	if err := registry.Unregister("sma_5"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if err := registry.Unregister("sma_5"); err == nil {
		t.Error("expected error for unregistering twice")
	}

	_ = registry.Register("sma_5", func() (Calculator, error) { return NewSMA(5) })
	registry.Clear()
	if len(registry.List()) != 0 {
		t.Error("expected empty registry after Clear")
	}
}
