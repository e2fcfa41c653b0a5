package common

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestMakeRandURLString_Decodes(t *testing.T) {
	s, err := MakeRandURLString(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("not base64url: %v", err)
	}
	if len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(b))
	}

	other, _ := MakeRandURLString(32)
	if other == s {
		t.Logf("warning: two MakeRandURLString(32) results are identical; extremely unlikely")
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestAuthReasons_ShareOneKind(t *testing.T) {
	reasons := []error{
		ErrInvalidCredentials,
		ErrInvalidRefreshToken,
		ErrRefreshTokenExpired,
		ErrInvalidToken,
		ErrTokenExpired,
	}
	for _, r := range reasons {
		if !errors.Is(r, ErrorUnauthorized) {
			t.Fatalf("%v must match ErrorUnauthorized", r)
		}
	}
	if errors.Is(ErrTokenExpired, ErrInvalidToken) {
		t.Fatalf("reasons must stay distinguishable")
	}
}
