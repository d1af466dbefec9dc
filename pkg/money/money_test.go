package money

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"100.00", 10000, false},
		{"100", 10000, false},
		{"50.00", 5000, false},
		{"99.5", 9950, false},
		{"0.05", 5, false},
		{".50", 50, false},
		{"", 0, true},
		{"-10.00", 0, true},
		{"10.005", 0, true},
		{"abc", 0, true},
	}

	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseRate(t *testing.T) {
	if r, err := ParseRate("0.10"); err != nil || r != 1000 {
		t.Errorf("ParseRate(0.10) = %d, %v; want 1000 bps", r, err)
	}
	if r, err := ParseRate("0.05"); err != nil || r != 500 {
		t.Errorf("ParseRate(0.05) = %d, %v; want 500 bps", r, err)
	}
	if _, err := ParseRate("1.5"); err == nil {
		t.Error("ParseRate(1.5): expected error for rate above 100%")
	}
	if _, err := ParseRate("-0.1"); err == nil {
		t.Error("ParseRate(-0.1): expected error for negative rate")
	}
}

func TestApplyRate(t *testing.T) {
	// 300.00 * 10% = 30.00
	if got := Money(30000).ApplyRate(1000); got != 3000 {
		t.Errorf("30000 * 10%% = %d, want 3000", got)
	}
	// 300.00 * 5% = 15.00
	if got := Money(30000).ApplyRate(500); got != 1500 {
		t.Errorf("30000 * 5%% = %d, want 1500", got)
	}
}

func TestApplyRateHalfToEven(t *testing.T) {
	// 0.25 * 10% = 0.025 -> rounds to even 0.02
	if got := Money(25).ApplyRate(1000); got != 2 {
		t.Errorf("25 * 10%% = %d, want 2 (round half to even)", got)
	}
	// 0.35 * 10% = 0.035 -> rounds to even 0.04
	if got := Money(35).ApplyRate(1000); got != 4 {
		t.Errorf("35 * 10%% = %d, want 4 (round half to even)", got)
	}
	// 0.26 * 10% = 0.026 -> rounds up normally to 0.03
	if got := Money(26).ApplyRate(1000); got != 3 {
		t.Errorf("26 * 10%% = %d, want 3", got)
	}
}

func TestStringFormatting(t *testing.T) {
	cases := map[Money]string{
		39500: "395.00",
		5:     "0.05",
		100:   "1.00",
		9950:  "99.50",
		0:     "0.00",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("Money(%d).String() = %q, want %q", in, got, want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := Money(39500).MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"395.00"` {
		t.Errorf("MarshalJSON = %s, want \"395.00\"", data)
	}

	var m Money
	if err := m.UnmarshalJSON([]byte(`"395.00"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != 39500 {
		t.Errorf("UnmarshalJSON = %d, want 39500", m)
	}
}
