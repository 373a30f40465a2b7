package validation

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Name", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Name", "value")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_URL(t *testing.T) {
	tests := []struct {
		value       string
		expectError bool
	}{
		{"/api", false},
		{"http://localhost:8000/api", false},
		{"https://example.org", false},
		{"ftp://example.org", true},
		{"http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cv := NewConfigValidator("ClientConfig").URL("BaseURL", tt.value)
			if cv.HasErrors() != tt.expectError {
				t.Errorf("expectError=%v, got %v", tt.expectError, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_Positive(t *testing.T) {
	tests := []struct {
		value       int
		expectError bool
	}{
		{-1, true},
		{0, true},
		{1, false},
	}

	for _, tt := range tests {
		cv := NewConfigValidator("TestConfig")
		cv.Positive("Burst", tt.value)
		if cv.HasErrors() != tt.expectError {
			t.Errorf("Positive(%d): expectError=%v, got %v", tt.value, tt.expectError, cv.HasErrors())
		}
	}
}

func TestConfigValidator_PositiveFloat(t *testing.T) {
	if !NewConfigValidator("T").PositiveFloat("Rate", 0).HasErrors() {
		t.Error("Expected error for zero")
	}
	if NewConfigValidator("T").PositiveFloat("Rate", 0.5).HasErrors() {
		t.Error("Expected no error for 0.5")
	}
}

func TestConfigValidator_RangeFloat(t *testing.T) {
	tests := []struct {
		name        string
		value       float64
		expectError bool
	}{
		{"below", 0.05, true},
		{"at min", 0.1, false},
		{"inside", 0.7, false},
		{"at max", 1, false},
		{"above", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("Settings").RangeFloat("LinkOpacity", tt.value, 0.1, 1)
			if cv.HasErrors() != tt.expectError {
				t.Errorf("expectError=%v, got %v", tt.expectError, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_RangeDuration(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.RangeDuration("Timeout", 50*time.Millisecond, time.Second, time.Minute)
	if !cv.HasErrors() {
		t.Error("Expected error for duration below range")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.RangeDuration("Timeout", 10*time.Second, time.Second, time.Minute)
	if cv2.HasErrors() {
		t.Error("Expected no error for duration in range")
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"debug", "info", "warn", "error"}

	cv := NewConfigValidator("TestConfig")
	cv.OneOf("LogLevel", "trace", allowed)
	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.OneOf("LogLevel", "info", allowed)
	if cv2.HasErrors() {
		t.Error("Expected no error for value in allowed list")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Custom("Field", func() error {
		return errors.New("custom validation failed")
	})
	if !cv.HasErrors() {
		t.Error("Expected error from custom validation")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Custom("Field", func() error { return nil })
	if cv2.HasErrors() {
		t.Error("Expected no error from passing custom validation")
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(true, func(v *ConfigValidator) {
		v.Required("Field", "")
	})
	if !cv.HasErrors() {
		t.Error("Expected error when condition is true")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.When(false, func(v *ConfigValidator) {
		v.Required("Field", "")
	})
	if cv2.HasErrors() {
		t.Error("Expected no error when condition is false")
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	if err := NewConfigValidator("TestConfig").Required("A", "x").Validate(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}

	err := NewConfigValidator("TestConfig").Required("A", "").Validate()
	if err == nil || err.Error() != "TestConfig.A: required field is empty" {
		t.Errorf("Unexpected single error: %v", err)
	}

	cv := NewConfigValidator("TestConfig").
		Required("A", "").
		Positive("B", 0).
		RangeFloat("C", 9, 0, 1)
	if len(cv.Errors()) != 3 {
		t.Fatalf("Expected 3 errors, got %d", len(cv.Errors()))
	}
	if err := cv.Validate(); err == nil {
		t.Error("Expected combined error")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "default"); got != "default" {
		t.Errorf("Expected 'default', got %q", got)
	}
	if got := DefaultOr("value", "default"); got != "value" {
		t.Errorf("Expected 'value', got %q", got)
	}
	if got := DefaultOr(0*time.Second, 5*time.Second); got != 5*time.Second {
		t.Errorf("Expected 5s, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0.1, 0.1, 1, 0.1},
	}

	for _, tt := range tests {
		if got := Clamp(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}

	if got := Clamp(3*time.Minute, time.Second, time.Minute); got != time.Minute {
		t.Errorf("Expected 1m, got %v", got)
	}
}
