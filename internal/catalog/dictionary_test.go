package catalog

import "testing"

func TestDictionary_Builtin(t *testing.T) {
	t.Parallel()

	dict := NewDictionary()

	if label, ok := dict.Label(2584); !ok || label != `7.5" × 3.75"` {
		t.Fatalf("Label(2584) = %q, %v", label, ok)
	}
	if !dict.IsOneSize(1627) {
		t.Fatalf("expected 1627 to be a One Size sentinel")
	}
	if label, ok := dict.Label(1627); !ok || label != OneSizeLabel {
		t.Fatalf("Label(1627) = %q, %v", label, ok)
	}
	if !dict.InDimensionalRange(95745) {
		t.Fatalf("expected 95745 inside the dimensional id block")
	}
	if dict.InDimensionalRange(42) {
		t.Fatalf("42 must be outside the dimensional id block")
	}
	if label, ok := dict.DimensionalLabel(95743); !ok || label != `2" × 2"` {
		t.Fatalf("DimensionalLabel(95743) = %q, %v", label, ok)
	}
}

func TestDictionary_DimensionalLabelFractional(t *testing.T) {
	t.Parallel()

	dict, err := ParseDictionary([]byte(`
dimensions:
  80001: {width: 7.5, height: 3.75}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if label, ok := dict.DimensionalLabel(80001); !ok || label != `7.5" × 3.75"` {
		t.Fatalf("DimensionalLabel(80001) = %q, %v", label, ok)
	}
}

func TestParseDictionary_OverridesBuiltin(t *testing.T) {
	t.Parallel()

	dict, err := ParseDictionary([]byte(`
labels:
  2584: Small Sticker
  70001: Gloss Finish
one_size_ids: [70002]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if label, _ := dict.Label(2584); label != "Small Sticker" {
		t.Fatalf("override lost: Label(2584) = %q", label)
	}
	if label, _ := dict.Label(70001); label != "Gloss Finish" {
		t.Fatalf("new entry missing: Label(70001) = %q", label)
	}
	if !dict.IsOneSize(70002) || !dict.IsOneSize(1627) {
		t.Fatalf("one size ids should merge, not replace")
	}
	// Builtin entries untouched by the override survive.
	if label, _ := dict.Label(2585); label != `11" × 3"` {
		t.Fatalf("builtin entry lost: Label(2585) = %q", label)
	}
}

func TestParseDictionary_BadYAML(t *testing.T) {
	t.Parallel()

	if _, err := ParseDictionary([]byte("labels: [not a map")); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}
