package messages

// 实体域统一业务错误码，随 Result.Code 走线上协议。
const (
	CodeValidation   = "VALIDATION_ERROR"      // 参数不合法，未发生任何变更
	CodeInsufficient = "INSUFFICIENT_RESOURCE" // 余额不足，未发生任何变更
	CodeNotFound     = "NOT_FOUND"             // 未知链路/交点/订单/目标节点
	CodeUnavailable  = "TARGET_UNAVAILABLE"    // 对端实体不可达，可重试
	CodeStale        = "STALE_STATE"           // 操作已被处理过（幂等重投可检测时静默忽略）
)
