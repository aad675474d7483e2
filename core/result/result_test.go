package result

import "testing"

func TestGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A"},
		{70, "A"},
		{69.99, "B"},
		{60, "B"},
		{55.5, "C"},
		{50, "C"},
		{40, "D"},
		{39.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.percentage); got != tt.want {
			t.Errorf("Grade(%v) = %v; want %v", tt.percentage, got, tt.want)
		}
	}
}
