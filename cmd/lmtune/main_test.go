package main

import (
	"reflect"
	"testing"
)

func TestBuildGrid(t *testing.T) {
	lambdas := []float64{0.2, 0.5, 0.8}
	discounts := []float64{0.1, 0.3}

	tests := []struct {
		model   string
		want    int
		wantErr bool
	}{
		{"bigram", 3, false},
		{"trigram", 6, false}, // pairs with l1+l2 <= 1
		{"katz-bigram", 2, false},
		{"baseline", 0, true},
	}
	for _, tt := range tests {
		grid, err := buildGrid(tt.model, lambdas, discounts)
		if (err != nil) != tt.wantErr {
			t.Errorf("buildGrid(%s) error = %v, wantErr %v", tt.model, err, tt.wantErr)
			continue
		}
		if len(grid) != tt.want {
			t.Errorf("buildGrid(%s) = %d points, want %d", tt.model, len(grid), tt.want)
		}
		for _, ps := range grid {
			if ps.Lambda1+ps.Lambda2 > 1 {
				t.Errorf("buildGrid(%s) produced %+v", tt.model, ps)
			}
		}
	}

	if _, err := buildGrid("bigram", nil, discounts); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestParseFloats(t *testing.T) {
	got := parseFloats(" 0.1, 0.5,,x,1")
	want := []float64{0.1, 0.5, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseFloats = %v, want %v", got, want)
	}
}
