package catalog

import "testing"

func validProduct() *Product {
	return &Product{
		ID:    "prod-1",
		Title: "Poster",
		Options: []OptionAxis{
			{Name: "Size", Values: []OptionValue{
				{RawID: "95745", NumericID: 95745, HasNumber: true},
			}},
		},
		Variants: []Variant{
			{ID: 1, PriceMinorUnits: 1299, Enabled: true, Selection: map[string]int64{"Size": 95745}},
		},
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{
			name:   "valid product",
			mutate: func(p *Product) {},
		},
		{
			name:    "missing product id",
			mutate:  func(p *Product) { p.ID = "  " },
			wantErr: true,
		},
		{
			name:    "no option axes",
			mutate:  func(p *Product) { p.Options = nil },
			wantErr: true,
		},
		{
			name: "duplicate axis name",
			mutate: func(p *Product) {
				p.Options = append(p.Options, p.Options[0])
			},
			wantErr: true,
		},
		{
			name:    "no variants",
			mutate:  func(p *Product) { p.Variants = nil },
			wantErr: true,
		},
		{
			name: "duplicate variant id",
			mutate: func(p *Product) {
				p.Variants = append(p.Variants, p.Variants[0])
			},
			wantErr: true,
		},
		{
			name: "variant missing axis value",
			mutate: func(p *Product) {
				p.Variants[0].Selection = map[string]int64{}
			},
			wantErr: true,
		},
		{
			name: "variant references undeclared axis",
			mutate: func(p *Product) {
				p.Variants[0].Selection = map[string]int64{"Material": 7}
			},
			wantErr: true,
		},
		{
			name:    "negative price",
			mutate:  func(p *Product) { p.Variants[0].PriceMinorUnits = -1 },
			wantErr: true,
		},
		{
			name: "value with neither id nor label",
			mutate: func(p *Product) {
				p.Options[0].Values = append(p.Options[0].Values, OptionValue{})
			},
			wantErr: true,
		},
	}

	validator := NewValidator()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			product := validProduct()
			tt.mutate(product)

			err := validator.Validate(product)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr {
				if _, ok := err.(*UpstreamDataError); !ok {
					t.Fatalf("expected UpstreamDataError, got %T", err)
				}
			}
		})
	}
}

func TestValidator_NilProduct(t *testing.T) {
	t.Parallel()

	if err := NewValidator().Validate(nil); err == nil {
		t.Fatalf("expected error for nil product")
	}
}
