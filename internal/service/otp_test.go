package service

import "testing"

func TestCryptoOTP_GeneratesSixDigitCodes(t *testing.T) {
	t.Parallel()

	g := NewCryptoOTP()
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		if code[0] == '0' {
			t.Fatalf("expected no leading zero, got %q", code)
		}
	}
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()

	if !VerifyOTP("123456", "123456") {
		t.Error("expected matching codes to verify")
	}
	if VerifyOTP("123457", "123456") {
		t.Error("expected mismatched codes to fail")
	}
	if VerifyOTP("", "") {
		t.Error("expected empty stored code to never verify")
	}
	if VerifyOTP("123456", "") {
		t.Error("expected empty stored code to never verify")
	}
}
