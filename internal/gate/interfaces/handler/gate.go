package handler

import (
	accountapp "Foam/internal/account/app"
	nodeactor "Foam/internal/node/actor"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/session"
	"Foam/internal/shared/transport"
	"Foam/modules/kit/errx"
	"context"
	"errors"
)

// Gate 是网关的共享依赖集合：会话绑定、节点 actor 门面、账号台账。
type Gate struct {
	Session  session.Manager
	Runtime  *nodeactor.Runtime
	Accounts *accountapp.AccountService
}

func NewGate(s session.Manager, rt *nodeactor.Runtime, accounts *accountapp.AccountService) *Gate {
	return &Gate{
		Session:  s,
		Runtime:  rt,
		Accounts: accounts,
	}
}

// HandleError 把后端错误统一收敛为线上数值码 + 对外文案。
// 实体业务失败不会走 error（它们在 Result 里），这里只处理账号层与 actor 层错误。
func (g *Gate) HandleError(ctx context.Context, err error) (int, string) {
	if err == nil {
		return transport.OK, ""
	}

	if code := errx.CodeOf(err); code != "" {
		transport.SetErrorReason(ctx, string(code))
		var e *errx.Error
		msg := "系统繁忙，请稍后重试"
		if errors.As(err, &e) && e.Msg() != "" {
			msg = e.Msg()
		}
		switch code {
		case accountapp.CodeAccountDisabled:
			return transport.Unauthorized, msg
		default:
			return transport.SystemError, "系统繁忙，请稍后重试"
		}
	}

	transport.SetErrorReason(ctx, err.Error())
	return nodeactor.CodeFromError(err), "系统繁忙，请稍后重试"
}

// HandleBizReject 把实体域的业务失败（Result.OK == false）收敛为线上码。
func (g *Gate) HandleBizReject(ctx context.Context, r messages.Result) (int, string) {
	transport.SetErrorReason(ctx, r.Code)
	return transport.CodeFromBiz(r.Code), r.Reason
}
