package app

import (
	"Foam/internal/account/domain"
	"context"
	"errors"
	"testing"
)

type fakeAccountRepo struct {
	accounts map[string]domain.Account
	nextUID  int
	getErr   error
	saveErr  error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]domain.Account{}, nextUID: 1}
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	acc, ok := f.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound.WithData("username", username)
	}
	return &acc, nil
}

func (f *fakeAccountRepo) Save(_ context.Context, acc domain.Account) (*domain.Account, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if acc.UId == 0 {
		acc.UId = f.nextUID
		f.nextUID++
	}
	f.accounts[acc.Username] = acc
	return &acc, nil
}

type fakeLoginHistoryRepo struct {
	saved []domain.LoginHistory
	err   error
}

func (f *fakeLoginHistoryRepo) Save(_ context.Context, h domain.LoginHistory) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, h)
	return nil
}

func TestEnsureAccount_首次上线自动落档(t *testing.T) {
	accRepo := newFakeAccountRepo()
	lhRepo := &fakeLoginHistoryRepo{}
	svc := NewAccountService(accRepo, lhRepo)

	acc, err := svc.EnsureAccount(context.Background(), "alice", "127.0.0.1")
	if err != nil {
		t.Fatalf("期望成功, err=%v", err)
	}
	if acc.UId == 0 || acc.Username != "alice" {
		t.Fatalf("期望分配 uid 且用户名一致, acc=%+v", acc)
	}
	if len(lhRepo.saved) != 1 || lhRepo.saved[0].State != domain.LoginSuccess {
		t.Fatalf("期望写入一条成功登录历史, saved=%+v", lhRepo.saved)
	}
}

func TestEnsureAccount_重复上线不重复建档(t *testing.T) {
	accRepo := newFakeAccountRepo()
	lhRepo := &fakeLoginHistoryRepo{}
	svc := NewAccountService(accRepo, lhRepo)

	first, err := svc.EnsureAccount(context.Background(), "bob", "")
	if err != nil {
		t.Fatalf("首次上线失败: %v", err)
	}
	second, err := svc.EnsureAccount(context.Background(), "bob", "")
	if err != nil {
		t.Fatalf("二次上线失败: %v", err)
	}
	if first.UId != second.UId {
		t.Fatalf("期望复用同一账号, first=%d second=%d", first.UId, second.UId)
	}
	if len(lhRepo.saved) != 2 {
		t.Fatalf("期望两条登录历史, got=%d", len(lhRepo.saved))
	}
}

func TestEnsureAccount_禁用账号拒绝并记失败历史(t *testing.T) {
	accRepo := newFakeAccountRepo()
	accRepo.accounts["carol"] = domain.Account{UId: 7, Username: "carol", Status: 0}
	lhRepo := &fakeLoginHistoryRepo{}
	svc := NewAccountService(accRepo, lhRepo)

	_, err := svc.EnsureAccount(context.Background(), "carol", "")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("期望 ErrAccountDisabled, err=%v", err)
	}
	if len(lhRepo.saved) != 1 || lhRepo.saved[0].State != domain.LoginFail {
		t.Fatalf("期望记一条失败历史, saved=%+v", lhRepo.saved)
	}
}

func TestEnsureAccount_仓储不可用透传系统错误(t *testing.T) {
	accRepo := newFakeAccountRepo()
	accRepo.getErr = domain.ErrSystemUnavailable.WithCause(errors.New("db down"))
	svc := NewAccountService(accRepo, &fakeLoginHistoryRepo{})

	_, err := svc.EnsureAccount(context.Background(), "dave", "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("期望 ErrUnavailable, err=%v", err)
	}
}
