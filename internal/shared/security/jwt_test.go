package security

import (
	"errors"
	"testing"
)

func TestAward_缺少secret时返回哨兵错误(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Award("alice")
	if !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("期望 ErrJWTSecretMissing, got=%v", err)
	}
}

func TestAward_ParseToken_往返(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := Award("alice")
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken err=%v", err)
	}
	if claims.Name != "alice" {
		t.Fatalf("期望 claims.Name=alice, got=%v", claims.Name)
	}
}

func TestParseToken_篡改token应失败(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := Award("alice")
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	if _, err := ParseToken(token + "x"); err == nil {
		t.Fatalf("期望篡改后的 token 验证失败")
	}
}
