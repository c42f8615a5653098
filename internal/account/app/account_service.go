package app

import (
	"Foam/internal/account/domain"
	"context"
	"errors"
	"time"
)

type AccountRepo interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Save(ctx context.Context, acc domain.Account) (*domain.Account, error)
}

type LoginHistoryRepo interface {
	Save(ctx context.Context, history domain.LoginHistory) error
}

type AccountService struct {
	accRepo AccountRepo
	lhRepo  LoginHistoryRepo
}

func NewAccountService(accRepo AccountRepo, lhRepo LoginHistoryRepo) *AccountService {
	return &AccountService{
		accRepo: accRepo,
		lhRepo:  lhRepo,
	}
}

// EnsureAccount 处理节点上线：账号不存在则落档，已禁用则拒绝，
// 成功后记一条登录历史。foam 节点只凭名字上线，没有口令。
func (s *AccountService) EnsureAccount(ctx context.Context, username, ip string) (*domain.Account, error) {
	acc, err := s.accRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		// 已存在：走下面的禁用检查
	case errors.Is(err, domain.ErrAccountNotFound):
		// 不存在：首次上线即落档
		acc, err = s.accRepo.Save(ctx, domain.Account{
			Username: username,
			Status:   1,
			Ctime:    time.Now(),
			Mtime:    time.Now(),
		})
		if err != nil {
			return nil, ErrUnavailable.WithCause(err)
		}
	default:
		return nil, ErrUnavailable.WithCause(err)
	}

	if acc.Disabled() {
		_ = s.lhRepo.Save(ctx, domain.LoginHistory{UId: acc.UId, CTime: time.Now(), Ip: ip, State: domain.LoginFail})
		return nil, ErrAccountDisabled.WithData("username", username)
	}

	if err := s.lhRepo.Save(ctx, domain.LoginHistory{UId: acc.UId, CTime: time.Now(), Ip: ip, State: domain.LoginSuccess}); err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	return acc, nil
}
