package dc

import (
	"context"
	"time"

	"Foam/internal/market/app/port"
	"Foam/internal/market/entity"
	shareddc "Foam/internal/shared/dc"
)

type MarketDC struct {
	repo   port.MarketRepository
	entity *entity.Book
	wb     *shareddc.WriteBehind[entity.BookState]
}

func NewMarketDC(repo port.MarketRepository) *MarketDC {
	return &MarketDC{repo: repo, wb: shareddc.NewWriteBehind(repo.Save)}
}

func (d *MarketDC) Load(ctx context.Context) (*entity.Book, error) {
	b, err := d.repo.LoadBook(ctx)
	if err != nil {
		return nil, err
	}
	d.entity = b
	return b, nil
}

func (d *MarketDC) Attach(b *entity.Book) { d.entity = b }

func (d *MarketDC) Entity() *entity.Book { return d.entity }

func (d *MarketDC) Flush(ctx context.Context) {
	if d.entity == nil || !d.entity.Dirty() {
		return
	}
	s := d.entity.Snapshot()
	d.entity.ClearDirty()
	d.wb.Enqueue(s)
}

func (d *MarketDC) FlushEvery() time.Duration { return d.wb.FlushEvery() }

func (d *MarketDC) Close(ctx context.Context) error {
	d.Flush(ctx)
	return d.wb.Close(ctx)
}
