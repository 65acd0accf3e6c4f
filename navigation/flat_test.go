package navigation

import (
	"errors"
	"slices"
	"testing"
)

func columnMask() []byte {
	mask := make([]byte, 25)
	for y := 0; y < 4; y++ {
		mask[y*5+2] = 1
	}
	return mask
}

func TestRouteColumn(t *testing.T) {
	got := Route(columnMask(), 5, 5, 0, 0, 4, 0)
	expected := []int{
		6, 0, 0, 0, 2, 2, 4, 3, 3, 3, 1, 4, 0,
		0, 0, 1, 3, 2, 4, 3, 3, 4, 0,
	}
	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestRouteNoRoute(t *testing.T) {
	tests := []struct {
		name          string
		mask          []byte
		width, height int
		bx, by        int
		ex, ey        int
	}{
		{"Blocked start", columnMask(), 5, 5, 2, 0, 4, 0},
		{"Goal outside", columnMask(), 5, 5, 0, 0, 9, 0},
		{"Mask size mismatch", make([]byte, 3), 2, 2, 0, 0, 1, 1},
		{"Zero width", nil, 0, 5, 0, 0, 0, 0},
		{"Overflowing area", nil, 1 << 62, 4, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.mask, tt.width, tt.height, tt.bx, tt.by, tt.ex, tt.ey)
			if !slices.Equal(got, []int{0}) {
				t.Errorf("Expected [0], got %v", got)
			}
		})
	}
}

func TestRouteSameCell(t *testing.T) {
	got := Route(columnMask(), 5, 5, 1, 1, 1, 1)
	if !slices.Equal(got, []int{1, 1, 1, 1, 1}) {
		t.Errorf("Expected [1 1 1 1 1], got %v", got)
	}
}

func TestUnpack(t *testing.T) {
	raw, smooth, err := Unpack(Route(columnMask(), 5, 5, 0, 0, 4, 0))
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(raw) != 6 || len(smooth) != 5 {
		t.Errorf("Expected 6 raw and 5 smooth points, got %d and %d", len(raw), len(smooth))
	}
	if raw[2] != Pos(2, 4) || smooth[1] != Pos(1, 3) {
		t.Errorf("Unexpected points raw=%v smooth=%v", raw, smooth)
	}

	raw, smooth, err = Unpack([]int{0})
	if err != nil || raw != nil || smooth != nil {
		t.Errorf("Expected empty paths for [0], got %v %v %v", raw, smooth, err)
	}
}

func TestUnpackErrors(t *testing.T) {
	tests := []struct {
		name     string
		flat     []int
		expected error
	}{
		{"Empty", nil, ErrFlatEmpty},
		{"Negative length", []int{-1}, ErrFlatLength},
		{"Raw overflows", []int{2, 0, 0}, ErrFlatLength},
		{"Odd smooth tail", []int{1, 0, 0, 5}, ErrFlatLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Unpack(tt.flat)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}
