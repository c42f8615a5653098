package dc

import (
	"context"
	"time"

	"Foam/internal/node/app/port"
	"Foam/internal/node/entity"
	shareddc "Foam/internal/shared/dc"
)

// NodeDC 把节点实体的内存态与写回循环粘在一起：
// load 全量进内存；flush 走脏检查 + 同步快照 + 异步写库。
// 快照在 actor 线程里取，写库在写回协程里做。
type NodeDC struct {
	repo   port.NodeRepository
	entity *entity.Node
	wb     *shareddc.WriteBehind[entity.NodeState]
}

func NewNodeDC(repo port.NodeRepository) *NodeDC {
	return &NodeDC{
		repo: repo,
		wb:   shareddc.NewWriteBehind(repo.Save),
	}
}

func (d *NodeDC) Load(ctx context.Context, username string) (*entity.Node, error) {
	n, err := d.repo.LoadNode(ctx, username)
	if err != nil {
		return nil, err
	}
	d.entity = n
	return n, nil
}

// Attach 把新建实体挂进 DC（首次接入时仓储无记录、实体由上层创建）。
func (d *NodeDC) Attach(n *entity.Node) {
	d.entity = n
}

func (d *NodeDC) Entity() *entity.Node { return d.entity }

func (d *NodeDC) Flush(ctx context.Context) {
	if d.entity == nil || !d.entity.Dirty() {
		return
	}
	s := d.entity.Snapshot()
	d.entity.ClearDirty()
	d.wb.Enqueue(s)
}

func (d *NodeDC) FlushEvery() time.Duration { return d.wb.FlushEvery() }

func (d *NodeDC) Close(ctx context.Context) error {
	d.Flush(ctx)
	return d.wb.Close(ctx)
}
