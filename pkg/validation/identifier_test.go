package validation

import (
	"testing"
)

func TestValidateGoalID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid ids
		{"simple", "contract-basics-0a1b2c3d4e", false},
		{"single char", "a", false},
		{"with digits", "exhibit-10-1", false},
		{"with dots", "v1.2-summary", false},
		{"with underscore", "proposer_max_information", false},

		// Invalid ids
		{"empty", "", true},
		{"uppercase", "Contract-Basics", true},
		{"path traversal", "../../etc/passwd", true},
		{"leading dot", ".hidden", true},
		{"leading hyphen", "-goal", true},
		{"slash", "a/b", true},
		{"space", "two words", true},
		{"too long", string(make([]byte, 200)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGoalID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoalID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateExhibitID(t *testing.T) {
	if err := ValidateExhibitID("exhibit-1"); err != nil {
		t.Errorf("unexpected error for valid id: %v", err)
	}
	if err := ValidateExhibitID("../stealth"); err == nil {
		t.Error("expected error for traversal id")
	}
	if err := ValidateExhibitID(""); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"title case", "Contract Key Dates", "contract-key-dates", false},
		{"punctuation", "Q3 (Draft) -- Final!", "q3-draft-final", false},
		{"already clean", "exhibit-1", "exhibit-1", false},
		{"unicode", "Café Menu", "caf-menu", false},
		{"nothing valid", "!!!", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeID(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
