package langdetect

import "testing"

func TestDetectPortuguese(t *testing.T) {
	lang, confidence := Detect("Esta politica do governo brasileiro sobre o Brasil e uma das mais importantes para fazer")
	if lang != "pt" {
		t.Errorf("Detect() language = %q, want pt", lang)
	}
	if confidence < ConfidenceFloor {
		t.Errorf("Detect() confidence = %v, want >= %v", confidence, ConfidenceFloor)
	}
}

func TestDetectEnglish(t *testing.T) {
	lang, _ := Detect("This government policy is about what has been done and how it affects the economy")
	if lang != "en" {
		t.Errorf("Detect() language = %q, want en", lang)
	}
}

func TestDetectShortTextIsUnknown(t *testing.T) {
	lang, confidence := Detect("ok")
	if lang != Unknown {
		t.Errorf("Detect() on short text = %q, want %q", lang, Unknown)
	}
	if confidence != 0 {
		t.Errorf("Detect() confidence on short text = %v, want 0", confidence)
	}
}

func TestValidatesAsAcceptsEmptyAndUnknown(t *testing.T) {
	if !ValidatesAs("", "pt", ValidationThreshold) {
		t.Error("ValidatesAs should accept empty text")
	}
	if !ValidatesAs("xk qz vv", "pt", ValidationThreshold) {
		t.Error("ValidatesAs should accept text that detects as Unknown")
	}
}

func TestValidatesAsRejectsMismatch(t *testing.T) {
	text := "This government policy is about what has been done and how it affects the economy"
	if ValidatesAs(text, "pt", ValidationThreshold) {
		t.Error("ValidatesAs should reject clearly-English text claimed as pt")
	}
}
