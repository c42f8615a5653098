package errx

import (
	"errors"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz("BIZ_X", "x").WithData("k", "v").WithCause(errors.New("cause1"))
	e2 := NewBiz("BIZ_X", "x2").WithData("k2", "v2").WithCause(errors.New("cause2"))
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true（只按 code 判断语义），e1=%v e2=%v", e1, e2)
	}
}

func TestError_业务错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("mongo down")
	err := NewBiz("INSUFFICIENT_RESOURCE", "余额不足").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望业务错误不捕获栈，got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
}

func TestError_系统错误捕获一次栈_且不重复捕获(t *testing.T) {
	cause := errors.New("io timeout")
	sys := NewSys("SYS_ENTITY_UNAVAILABLE", "实体不可达").WithCause(cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("期望系统错误在发生/转换处捕获栈，got=%v", got)
	}

	// 再包一层系统错误：下层已有栈时上层不应重复捕获
	sys2 := NewSys("SYS_GATE_ERROR", "网关异常").WithCause(sys)
	if got := sys2.Stack(); got != nil {
		t.Fatalf("期望上层系统错误不重复捕获栈（cause 链里已有栈），got=%v", got)
	}
}

func TestError_Data_防止外部修改污染(t *testing.T) {
	err := NewBiz("BIZ_X", "").WithData("k", "v")
	m := err.Data()
	m["k"] = "mutated"
	if got := err.Data()["k"]; got != "v" {
		t.Fatalf("期望 Data() 返回拷贝，外部修改不影响错误上下文；got=%v", got)
	}
}

func TestCodeOf_提取错误码(t *testing.T) {
	err := NewBiz("NOT_FOUND", "link not found").WithCause(errors.New("x"))
	if got := CodeOf(err); got != "NOT_FOUND" {
		t.Fatalf("CodeOf=%v", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("非 errx 错误期望返回空串, got=%v", got)
	}
}
