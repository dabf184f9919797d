package normalization

import "testing"

func TestPhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"india with country code", "+91 98765 43210", "9876543210"},
		{"india bare country code", "919876543210", "9876543210"},
		{"us formatted", "+1 (415) 555-0123", "4155550123"},
		{"plain ten digits", "9876543210", "9876543210"},
		{"leading zero trunk prefix", "09876543210", "9876543210"},
		{"multiple leading zeros", "009876543210", "9876543210"},
		{"too short", "12345", ""},
		{"empty", "", ""},
		{"letters only", "call me maybe", ""},
		{"digits with noise", "98-76-54-32-10", "9876543210"},
		// 91 prefix only strips when more than 10 digits remain overall
		{"ten digits starting with 91", "9198765432", "9198765432"},
		// 1 prefix only strips at exactly 11 digits
		{"twelve digits starting with 1", "123456789012", "3456789012"},
		{"zeros collapse below ten digits", "0000000000", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Phone(tc.in); got != tc.want {
				t.Fatalf("Phone(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPhonePtr(t *testing.T) {
	if got := PhonePtr(nil); got != nil {
		t.Fatalf("expected nil for nil input, got %q", *got)
	}

	short := "12345"
	if got := PhonePtr(&short); got != nil {
		t.Fatalf("expected nil for unparseable input, got %q", *got)
	}

	raw := "+91 98765 43210"
	got := PhonePtr(&raw)
	if got == nil || *got != "9876543210" {
		t.Fatalf("PhonePtr(%q) = %v, want 9876543210", raw, got)
	}
}

func TestEmail(t *testing.T) {
	if got := Email("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Fatalf("Email normalization mismatch: %q", got)
	}
	empty := "   "
	if got := EmailPtr(&empty); got != nil {
		t.Fatalf("expected nil for blank email, got %q", *got)
	}
}
