package mongodb

import (
	"context"
	"errors"

	"Foam/internal/market/entity"
	"Foam/internal/market/infra/persistence/model"
	"Foam/internal/shared/errs"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultMarketCollectionName = "market"

const (
	OpLoadBook = "repo.market.LoadBook"
	OpSaveBook = "repo.market.Save"
)

type MarketRepo struct {
	coll *mongo.Collection
}

func NewMarketRepo(db *mongo.Database) *MarketRepo {
	if db == nil {
		return &MarketRepo{}
	}
	return &MarketRepo{coll: db.Collection(defaultMarketCollectionName)}
}

func (r *MarketRepo) LoadBook(ctx context.Context) (*entity.Book, error) {
	if r == nil || r.coll == nil {
		return nil, errs.Wrap(OpLoadBook, errs.KindInfra, errors.New("mongodb market collection is nil"), nil)
	}

	var doc model.MarketDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": model.MarketDocID}).Decode(&doc)
	if err == nil {
		return entity.Hydrate(model.MarketDocToState(doc)), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return nil, errs.Wrap(OpLoadBook, errs.KindInfra, err, nil)
}

func (r *MarketRepo) Save(ctx context.Context, s entity.BookState) error {
	if r == nil || r.coll == nil {
		return errs.Wrap(OpSaveBook, errs.KindInfra, errors.New("mongodb market collection is nil"), nil)
	}

	doc := model.MarketStateToDoc(s)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(OpSaveBook, errs.KindInfra, err, nil)
	}
	return nil
}
