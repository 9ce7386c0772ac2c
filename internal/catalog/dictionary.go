package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// OneSizeLabel is the canonical label for a degenerate size axis.
const OneSizeLabel = "One Size"

// Dimensions holds a print size in inches.
type Dimensions struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Dictionary maps upstream numeric option ids to display labels. It is built
// once at startup, injected into the normalizer, and never mutated afterwards,
// so concurrent readers need no locking.
type Dictionary struct {
	labels     map[int64]string
	dimensions map[int64]Dimensions
	oneSizeIDs map[int64]bool
	dimLow     int64
	dimHigh    int64
}

type dictionaryFile struct {
	Labels     map[int64]string     `yaml:"labels"`
	Dimensions map[int64]Dimensions `yaml:"dimensions"`
	OneSizeIDs []int64              `yaml:"one_size_ids"`
}

// Known upstream option ids. The label table covers ids the catalog ships
// without titles; the dimension table covers the sticker/poster print-size
// id block, from which labels are synthesized as `W" × H"`.
var builtinDictionary = dictionaryFile{
	Labels: map[int64]string{
		2584: `7.5" × 3.75"`,
		2585: `11" × 3"`,
		2586: `15" × 3.75"`,
		2587: `30" × 7.5"`,
	},
	Dimensions: map[int64]Dimensions{
		95743: {Width: 2, Height: 2},
		95744: {Width: 3, Height: 3},
		95745: {Width: 4, Height: 4},
		95746: {Width: 6, Height: 6},
		95747: {Width: 8, Height: 8},
		95748: {Width: 10, Height: 10},
		95749: {Width: 12, Height: 12},
	},
	OneSizeIDs: []int64{1627},
}

// NewDictionary returns the built-in id table.
func NewDictionary() *Dictionary {
	return buildDictionary(builtinDictionary)
}

// LoadDictionary reads a YAML override file and merges it over the built-in
// table. Entries in the file win on id collision.
func LoadDictionary(path string) (*Dictionary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read option dictionary: %w", err)
	}
	return ParseDictionary(content)
}

// ParseDictionary merges YAML dictionary content over the built-in table.
func ParseDictionary(content []byte) (*Dictionary, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse option dictionary YAML: %w", err)
	}

	merged := dictionaryFile{
		Labels:     map[int64]string{},
		Dimensions: map[int64]Dimensions{},
	}
	for id, label := range builtinDictionary.Labels {
		merged.Labels[id] = label
	}
	for id, dim := range builtinDictionary.Dimensions {
		merged.Dimensions[id] = dim
	}
	merged.OneSizeIDs = append(merged.OneSizeIDs, builtinDictionary.OneSizeIDs...)

	for id, label := range file.Labels {
		merged.Labels[id] = label
	}
	for id, dim := range file.Dimensions {
		merged.Dimensions[id] = dim
	}
	merged.OneSizeIDs = append(merged.OneSizeIDs, file.OneSizeIDs...)

	return buildDictionary(merged), nil
}

func buildDictionary(file dictionaryFile) *Dictionary {
	d := &Dictionary{
		labels:     make(map[int64]string, len(file.Labels)),
		dimensions: make(map[int64]Dimensions, len(file.Dimensions)),
		oneSizeIDs: make(map[int64]bool, len(file.OneSizeIDs)),
	}
	for id, label := range file.Labels {
		d.labels[id] = label
	}
	for id, dim := range file.Dimensions {
		d.dimensions[id] = dim
	}
	for _, id := range file.OneSizeIDs {
		d.oneSizeIDs[id] = true
		d.labels[id] = OneSizeLabel
	}

	ids := make([]int64, 0, len(d.dimensions))
	for id := range d.dimensions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > 0 {
		d.dimLow = ids[0]
		d.dimHigh = ids[len(ids)-1]
	}

	return d
}

// Label returns the dictionary label for a known option id.
func (d *Dictionary) Label(id int64) (string, bool) {
	label, ok := d.labels[id]
	return label, ok
}

// InDimensionalRange reports whether an id falls inside the known
// print-size id block.
func (d *Dictionary) InDimensionalRange(id int64) bool {
	return d.dimLow != 0 && id >= d.dimLow && id <= d.dimHigh
}

// DimensionalLabel synthesizes a `W" × H"` label for a print-size id.
func (d *Dictionary) DimensionalLabel(id int64) (string, bool) {
	dim, ok := d.dimensions[id]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(`%s" × %s"`, formatInches(dim.Width), formatInches(dim.Height)), true
}

// IsOneSize reports whether the id is a "One Size" sentinel.
func (d *Dictionary) IsOneSize(id int64) bool {
	return d.oneSizeIDs[id]
}

func formatInches(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
