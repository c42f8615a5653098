package port

import (
	"context"

	"Foam/internal/point/entity"
)

type PointRepository interface {
	// LoadPoint 未找到时返回 (nil, nil)。
	LoadPoint(ctx context.Context, id string) (*entity.Point, error)
	Save(ctx context.Context, s entity.PointState) error
}
