package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 数值约定跟随日志上报：0 成功，<500 业务失败，>=500 系统失败。
const (
	OK                   = 0
	InvalidParam         = 400
	Unauthorized         = 401
	InsufficientResource = 402
	NotFound             = 404
	StaleState           = 409
	SystemError          = 500
	TargetUnavailable    = 503
	Timeout              = 504
)

// CodeFromBiz 把实体域错误码映射为线上数值码。
func CodeFromBiz(code string) int {
	switch code {
	case "":
		return OK
	case "VALIDATION_ERROR":
		return InvalidParam
	case "INSUFFICIENT_RESOURCE":
		return InsufficientResource
	case "NOT_FOUND":
		return NotFound
	case "STALE_STATE":
		return StaleState
	case "TARGET_UNAVAILABLE":
		return TargetUnavailable
	case "TIMEOUT":
		return Timeout
	default:
		return SystemError
	}
}
