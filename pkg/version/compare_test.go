package version

import (
	"sort"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.5", "1.0.2", 1},
		{"1.0.2", "1.0.5", -1},
		{"1.0.0", "1.0", 0},
		{"1.0", "1", 0},
		{"1-ga", "1", 0},
		{"1.0.final", "1.0", 0},
		{"1.10", "1.9", 1},
		{"1.0.10", "1.0.9", 1},
		{"2.0-SNAPSHOT", "1.0", 1},
		{"2.0-SNAPSHOT", "2.0", -1},
		{"2.0.0-SNAPSHOT", "2.0.0-rc1", 1},
		{"1.0-alpha", "1.0-beta", -1},
		{"1.0-beta", "1.0-milestone", -1},
		{"1.0-milestone", "1.0-rc", -1},
		{"1.0-rc1", "1.0-cr1", 0},
		{"1.0-rc", "1.0", -1},
		{"1.0-sp", "1.0", 1},
		{"1.0a1", "1.0-alpha-1", 0},
		{"1.0b2", "1.0-beta-2", 0},
		{"1.0m3", "1.0-milestone-3", 0},
		{"1.0-foo", "1.0-sp", 1},
		{"1.0-bar", "1.0-foo", -1},
		{"1.0.1", "1.0-foo", 1},
		{"007", "7", 0},
		{"99999999999999999999999", "99999999999999999999998", 1},
		{"2.0.0-20240101.120000-3", "2.0.0-20240101.120000-2", 1},
		{"2.0.0-20240102.000000-1", "2.0.0-20240101.235959-9", 1},
		{"", "", 0},
		{"", "0", 0},
		{"0.0.1", "", 1},
		{"1.0-SNAPSHOT", "1.0-snapshot", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d (antisymmetry)", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareTransitive(t *testing.T) {
	ordered := []string{
		"1.0-alpha-1",
		"1.0-beta-1",
		"1.0-milestone-1",
		"1.0-rc-1",
		"1.0-SNAPSHOT",
		"1.0",
		"1.0-sp-1",
		"1.0.1",
		"1.1",
		"2.0-SNAPSHOT",
		"2.0",
		"10.0",
	}

	for i := range ordered {
		for j := range ordered {
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got := Compare(ordered[i], ordered[j]); got != want {
				t.Errorf("Compare(%q, %q) = %d, want %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestParseSortKey(t *testing.T) {
	in := []string{"1.0.2", "2.0-SNAPSHOT", "1.0.5", "1.0", "0.9"}
	keys := make([]Version, len(in))
	for i, s := range in {
		keys[i] = Parse(s)
	}

	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) > 0 })

	want := []string{"2.0-SNAPSHOT", "1.0.5", "1.0.2", "1.0", "0.9"}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, k.String(), want[i])
		}
	}
}

func TestZeroVersion(t *testing.T) {
	var zero Version
	if got := zero.Compare(Parse("")); got != 0 {
		t.Errorf("zero.Compare(\"\") = %d, want 0", got)
	}
	if got := zero.Compare(Parse("1")); got != -1 {
		t.Errorf("zero.Compare(\"1\") = %d, want -1", got)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		candidate, baseline string
		want                bool
	}{
		{"1.0.1", "0.0.1", true},
		{"0.0.1", "0.0.1", false},
		{"0.0.1.0", "0.0.1", false},
		{"0.0.1-SNAPSHOT", "0.0.1", false},
		{"0.0.2-SNAPSHOT", "0.0.1", true},
	}

	for _, tt := range tests {
		if got := Newer(tt.candidate, tt.baseline); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.candidate, tt.baseline, got, tt.want)
		}
	}
}

func TestIsSnapshot(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.0-SNAPSHOT", true},
		{"1.0-snapshot", true},
		{"1.0", false},
		{"SNAPSHOT", false},
		{"1.0-20240101.120000-1", false},
	}

	for _, tt := range tests {
		if got := IsSnapshot(tt.in); got != tt.want {
			t.Errorf("IsSnapshot(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
