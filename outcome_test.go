package typematic

import "testing"

func TestChangedMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b Changed
		want Changed
	}{
		{name: "both false", a: false, b: false, want: false},
		{name: "left true", a: true, b: false, want: true},
		{name: "right true", a: false, b: true, want: true},
		{name: "both true", a: true, b: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Merge(tt.b); got != tt.want {
				t.Errorf("Merge(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCountMerge(t *testing.T) {
	if got := Count(2).Merge(3); got != 5 {
		t.Errorf("Merge(2, 3) = %d, want 5", got)
	}
	var zero Count
	if got := zero.Merge(7); got != 7 {
		t.Errorf("zero.Merge(7) = %d, want 7", got)
	}
}
