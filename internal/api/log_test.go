package api

import (
	"testing"
)

func TestFormatLogLine(t *testing.T) {
	input := `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="flight stage changed" from=takeoff to=climb seq=1202 prompt=thisvalueiswaytoolongtobedisplayed`
	expected := "06:50:46 flight stage changed (from=takeoff, seq=1202, to=climb)"

	result := formatLogLine(input)
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestFormatLogLine_PlainText(t *testing.T) {
	input := "not a structured line"
	if got := formatLogLine(input); got != input {
		t.Errorf("Expected passthrough, got '%s'", got)
	}
}

func TestFormatLogLine_NoMsg(t *testing.T) {
	input := "key=value other=thing"
	if got := formatLogLine(input); got != input {
		t.Errorf("Expected raw line when msg is missing, got '%s'", got)
	}
}
