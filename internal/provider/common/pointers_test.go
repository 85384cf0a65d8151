package common

import "testing"

func TestDeref(t *testing.T) {
	s := "hello"
	if got := Deref(&s); got != "hello" {
		t.Errorf("Deref(&s) = %q, want hello", got)
	}
	var nilString *string
	if got := Deref(nilString); got != "" {
		t.Errorf("Deref(nil) = %q, want empty", got)
	}

	n := 42
	if got := Deref(&n); got != 42 {
		t.Errorf("Deref(&n) = %d, want 42", got)
	}
	var nilInt *int
	if got := Deref(nilInt); got != 0 {
		t.Errorf("Deref(nil) = %d, want 0", got)
	}
}
