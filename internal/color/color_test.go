package color

import "testing"

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		subject string
		want    string
	}{
		{"Physics", "7"},
		{"physics", "7"},
		{"p6", "7"},
		{"Chemistry", "6"},
		{"chem", "6"},
		{"Combined Maths", "10"},
		{"c.m.", "10"},
		{"History", "1"},
		{"  physics  ", "7"},
	}
	for _, tc := range cases {
		if got := p.ColorFor(tc.subject); string(got) != tc.want {
			t.Fatalf("ColorFor(%q) = %s, want %s", tc.subject, got, tc.want)
		}
	}
	if p.Done() != Graphite {
		t.Fatalf("done color = %s", p.Done())
	}
}
