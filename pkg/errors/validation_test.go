package errors

import (
	"testing"
)

func TestValidateEntityName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "shiny gold", false},
		{"valid with dash", "dark-ish red", false},
		{"valid with digits", "faded blue2", false},

		{"empty", "", true},
		{"one word", "gold", true},
		{"three words", "very shiny gold", true},
		{"double space", "shiny  gold", true},
		{"leading digit", "1shiny gold", true},
		{"too long", "a" + string(make([]byte, 200)), true},
		{"control char", "shiny\x01 gold", true},
		{"newline", "shiny\ngold", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidTarget {
				t.Errorf("ValidateEntityName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTarget)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "input.txt", false},
		{"absolute", "/tmp/rules.txt", false},
		{"stdin", "-", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
