package synthkey

import "testing"

func TestEmailPK_Deterministic(t *testing.T) {
	a := EmailPK("customers", "a@x.com")
	b := EmailPK("customers", "a@x.com")
	if a != b {
		t.Errorf("expected deterministic key, got %q and %q", a, b)
	}
}

func TestEmailPK_Length(t *testing.T) {
	pk := EmailPK("customers", "a@x.com")
	if len(pk) != 32 {
		t.Errorf("expected 32 hex characters, got %d (%q)", len(pk), pk)
	}
}

func TestEmailPK_Distinct(t *testing.T) {
	tests := []struct {
		name           string
		table1, email1 string
		table2, email2 string
	}{
		{"different emails", "customers", "a@x.com", "customers", "b@x.com"},
		{"different tables", "customers", "a@x.com", "patients", "a@x.com"},
		{"case sensitive", "customers", "a@x.com", "customers", "A@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if EmailPK(tt.table1, tt.email1) == EmailPK(tt.table2, tt.email2) {
				t.Error("expected distinct keys")
			}
		})
	}
}
