package service_test

import (
	"context"
	"testing"

	"kos-manager/internal/service"
)

var ctx = context.Background()

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{50000, "$500.00"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-250, "-$2.50"},
	}
	for _, tt := range tests {
		if got := service.FormatCurrency(tt.cents); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatCurrencySymbol(t *testing.T) {
	if got := service.FormatCurrencySymbol(150000, "Rp"); got != "Rp1,500.00" {
		t.Errorf("got %q", got)
	}
}

func TestOccupancyRate(t *testing.T) {
	tests := []struct {
		total, occupied int64
		want            float64
	}{
		{0, 0, 0},
		{4, 1, 25},
		{4, 4, 100},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := service.OccupancyRate(tt.total, tt.occupied); got != tt.want {
			t.Errorf("OccupancyRate(%d, %d) = %v, want %v", tt.total, tt.occupied, got, tt.want)
		}
	}
}
