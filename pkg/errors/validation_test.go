package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateSize(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"valid", 1200, false},
		{"fractional", 0.5, false},
		{"max", MaxDimension, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
		{"too large", MaxDimension + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSize("width", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSize(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSize) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidSize)
			}
		})
	}
}

func TestValidateFormatAndStyle(t *testing.T) {
	formats := []string{"svg", "png", "pdf", "json"}
	if err := ValidateFormat("svg", formats); err != nil {
		t.Errorf("svg: %v", err)
	}
	err := ValidateFormat("gif", formats)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("gif: %v", err)
	}
	if !strings.Contains(UserMessage(err), "svg, png, pdf, json") {
		t.Errorf("message should list valid formats: %q", UserMessage(err))
	}

	if err := ValidateStyle("outline", []string{"simple", "outline"}); err != nil {
		t.Errorf("outline: %v", err)
	}
	if err := ValidateStyle("", []string{"simple"}); !Is(err, ErrCodeInvalidStyle) {
		t.Errorf("empty style: %v", err)
	}
}

func TestValidatePersonID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "ada", false},
		{"uuid", "0b6c1e0a-2a6c-5d0e-9d5e-2f1a0a4c3b21", false},
		{"spaces", "emp 42", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePersonID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePersonID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"relative", "roster.yaml", false},
		{"absolute", "/srv/data/roster.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "roster\x00.yaml", true},
		{"control char", "roster\x01.yaml", true},
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

func TestValidateURI(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"mongodb://localhost:27017", false},
		{"mongodb+srv://cluster.example.net", false},
		{"", true},
		{"redis://localhost:6379", true},
	}

	for _, tt := range tests {
		err := ValidateURI(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURI(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
