package logx

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ReportAccessWithLoggerContext 记录访问日志：
// - biz_code == 0: INFO
// - biz_code  1~499: WARN
// - biz_code >= 500: ERROR
func ReportAccessWithLoggerContext(ctx context.Context, l Logger, action string, bizCode int, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := []zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
	}
	base = append(base, fields...)
	withCtx := l.WithContext(ctx)
	switch {
	case bizCode == 0:
		withCtx.Info("access", base...)
	case bizCode >= 500:
		withCtx.Error("access", base...)
	default:
		withCtx.Warn("access", base...)
	}
}

// ReportSysErrorWithLoggerContext 记录技术错误日志：ERROR、err_type=sys，附带 cause 链。
func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	if action == "" {
		action = "sys_error"
	}

	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if chain := causeChain(err); len(chain) > 1 {
		base = append(base, zap.Any("cause_chain", chain))
	}
	base = append(base, fields...)

	l.WithContext(ctx).Error(fmt.Sprintf("%s, error:%s", action, err.Error()), base...)
}

func causeChain(err error) []string {
	const maxDepth = 16
	var chain []string
	for i := 0; i < maxDepth && err != nil; i++ {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
