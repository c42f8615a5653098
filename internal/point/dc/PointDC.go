package dc

import (
	"context"
	"time"

	"Foam/internal/point/app/port"
	"Foam/internal/point/entity"
	shareddc "Foam/internal/shared/dc"
)

type PointDC struct {
	repo   port.PointRepository
	entity *entity.Point
	wb     *shareddc.WriteBehind[entity.PointState]
}

func NewPointDC(repo port.PointRepository) *PointDC {
	return &PointDC{repo: repo, wb: shareddc.NewWriteBehind(repo.Save)}
}

func (d *PointDC) Load(ctx context.Context, id string) (*entity.Point, error) {
	p, err := d.repo.LoadPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	d.entity = p
	return p, nil
}

func (d *PointDC) Attach(p *entity.Point) { d.entity = p }

func (d *PointDC) Entity() *entity.Point { return d.entity }

func (d *PointDC) Flush(ctx context.Context) {
	if d.entity == nil || !d.entity.Dirty() {
		return
	}
	s := d.entity.Snapshot()
	d.entity.ClearDirty()
	d.wb.Enqueue(s)
}

func (d *PointDC) FlushEvery() time.Duration { return d.wb.FlushEvery() }

func (d *PointDC) Close(ctx context.Context) error {
	d.Flush(ctx)
	return d.wb.Close(ctx)
}
