package utils

import (
    "errors"
    "testing"
    "time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
    token, exp, err := NewSessionToken("test-secret", 30)
    if err != nil {
        t.Fatalf("NewSessionToken: %v", err)
    }
    if until := time.Until(exp); until < 29*time.Minute || until > 31*time.Minute {
        t.Errorf("expiry %v away, want about 30m", until)
    }

    claims, err := ParseSessionToken("test-secret", token)
    if err != nil {
        t.Fatalf("ParseSessionToken: %v", err)
    }
    if role, _ := claims["role"].(string); role != "admin" {
        t.Errorf("role %q, want admin", role)
    }
    if sub, _ := claims["sub"].(string); sub != "admin" {
        t.Errorf("subject %q, want admin", sub)
    }
}

func TestParseSessionTokenRejectsBadInput(t *testing.T) {
    token, _, err := NewSessionToken("test-secret", 30)
    if err != nil {
        t.Fatal(err)
    }
    if _, err := ParseSessionToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
        t.Errorf("wrong secret: err=%v, want ErrInvalidToken", err)
    }
    if _, err := ParseSessionToken("test-secret", "not.a.token"); !errors.Is(err, ErrInvalidToken) {
        t.Errorf("garbage token: err=%v, want ErrInvalidToken", err)
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("hunter2", 4)
    if err != nil {
        t.Fatalf("HashPassword: %v", err)
    }
    if !VerifyPassword(hash, "hunter2") {
        t.Error("correct password rejected")
    }
    if VerifyPassword(hash, "hunter3") {
        t.Error("wrong password accepted")
    }
}
