package port

import (
	"context"

	"Foam/internal/node/entity"
)

type NodeRepository interface {
	// LoadNode 未找到时返回 (nil, nil)，由上层按首次接入创建。
	LoadNode(ctx context.Context, username string) (*entity.Node, error)
	Save(ctx context.Context, s entity.NodeState) error
}
