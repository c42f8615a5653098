package port

import (
	"context"

	"Foam/internal/market/entity"
)

type MarketRepository interface {
	// LoadBook 未找到时返回 (nil, nil)，由上层建空簿。
	LoadBook(ctx context.Context) (*entity.Book, error)
	Save(ctx context.Context, s entity.BookState) error
}
