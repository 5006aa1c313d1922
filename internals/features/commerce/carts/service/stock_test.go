package service

import "testing"

func TestRemainingCapacity(t *testing.T) {
	cases := []struct {
		name      string
		stock     int
		purchased int64
		carted    int64
		want      int64
	}{
		{"empty session", 10, 0, 0, 10},
		{"purchases count against ceiling", 10, 6, 0, 4},
		{"open carts count against ceiling", 10, 0, 3, 7},
		{"both combined", 10, 6, 3, 1},
		{"exactly full", 10, 7, 3, 0},
		{"oversold clamps to zero", 10, 9, 4, 0},
		{"zero stock is unlimited", 0, 50, 50, -1},
		{"negative stock is unlimited", -1, 0, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingCapacity(tc.stock, tc.purchased, tc.carted); got != tc.want {
				t.Errorf("RemainingCapacity(%d, %d, %d) = %d, want %d",
					tc.stock, tc.purchased, tc.carted, got, tc.want)
			}
		})
	}
}

func TestFitsCapacity(t *testing.T) {
	cases := []struct {
		name      string
		stock     int
		purchased int64
		carted    int64
		qty       int
		want      bool
	}{
		{"fits with room to spare", 10, 2, 2, 3, true},
		{"fits exactly", 10, 4, 4, 2, true},
		{"one over the ceiling", 10, 4, 4, 3, false},
		{"full session rejects one", 5, 5, 0, 1, false},
		{"unlimited always fits", 0, 100, 100, 20, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FitsCapacity(tc.stock, tc.purchased, tc.carted, tc.qty); got != tc.want {
				t.Errorf("FitsCapacity(%d, %d, %d, %d) = %v, want %v",
					tc.stock, tc.purchased, tc.carted, tc.qty, got, tc.want)
			}
		})
	}
}
