package repo

import (
	"Foam/internal/account/domain"
	"context"
	"errors"

	"gorm.io/gorm"
)

type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{
		db: db,
	}
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var acc domain.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&acc).Error
	if err == nil {
		return &acc, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 技术错误 → 业务错误
		return nil, domain.ErrAccountNotFound.WithData("username", username)
	}
	//  纯技术错误（连接超时等），是无法转换的技术错误，保持原样或包装返回给上级
	return nil, domain.ErrSystemUnavailable.WithData("username", username).WithCause(err)
}

func (r *AccountRepo) Save(ctx context.Context, acc domain.Account) (*domain.Account, error) {
	err := r.db.WithContext(ctx).Save(&acc).Error
	if err != nil {
		return nil, domain.ErrSystemUnavailable.WithData("username", acc.Username).WithCause(err)
	}
	return &acc, nil
}
