package dc

import (
	"context"
	"time"

	"Foam/internal/link/app/port"
	"Foam/internal/link/entity"
	shareddc "Foam/internal/shared/dc"
)

type LinkDC struct {
	repo   port.LinkRepository
	entity *entity.Link
	wb     *shareddc.WriteBehind[entity.LinkState]
}

func NewLinkDC(repo port.LinkRepository) *LinkDC {
	return &LinkDC{repo: repo, wb: shareddc.NewWriteBehind(repo.Save)}
}

func (d *LinkDC) Load(ctx context.Context, id string) (*entity.Link, error) {
	l, err := d.repo.LoadLink(ctx, id)
	if err != nil {
		return nil, err
	}
	d.entity = l
	return l, nil
}

func (d *LinkDC) Attach(l *entity.Link) { d.entity = l }

func (d *LinkDC) Entity() *entity.Link { return d.entity }

func (d *LinkDC) Flush(ctx context.Context) {
	if d.entity == nil || !d.entity.Dirty() {
		return
	}
	s := d.entity.Snapshot()
	d.entity.ClearDirty()
	d.wb.Enqueue(s)
}

func (d *LinkDC) FlushEvery() time.Duration { return d.wb.FlushEvery() }

func (d *LinkDC) Close(ctx context.Context) error {
	d.Flush(ctx)
	return d.wb.Close(ctx)
}
