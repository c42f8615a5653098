package port

import (
	"context"

	"Foam/internal/link/entity"
)

type LinkRepository interface {
	// LoadLink 未找到时返回 (nil, nil)。
	LoadLink(ctx context.Context, id string) (*entity.Link, error)
	Save(ctx context.Context, s entity.LinkState) error
}
