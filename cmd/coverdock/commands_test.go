package main

import "testing"

func TestParseMoveArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantX    int
		wantY    int
		wantCode int
	}{
		{"positive", []string{"300", "40"}, 300, 40, -1},
		{"left monitor", []string{"-60", "20"}, -60, 20, -1},
		{"above primary", []string{"100", "-1080"}, 100, -1080, -1},
		{"single -1", []string{"-1", "300"}, -1, 300, -1},
		{"explicit terminator", []string{"--", "-5", "-5"}, -5, -5, -1},
		{"centering pair", []string{"-1", "-1"}, 0, 0, 2},
		{"not a number", []string{"left", "10"}, 0, 0, 2},
		{"missing y", []string{"10"}, 0, 0, 2},
		{"help", []string{"-h"}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, code := parseMoveArgs(tt.args)
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d", code, tt.wantCode)
			}
			if code < 0 && (x != tt.wantX || y != tt.wantY) {
				t.Errorf("position = %d,%d, want %d,%d", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}
