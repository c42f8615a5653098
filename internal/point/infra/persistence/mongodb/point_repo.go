package mongodb

import (
	"context"
	"errors"

	"Foam/internal/point/entity"
	"Foam/internal/point/infra/persistence/model"
	"Foam/internal/shared/errs"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultPointCollectionName = "contested_point"

const (
	OpLoadPoint = "repo.point.LoadPoint"
	OpSavePoint = "repo.point.Save"
)

type PointRepo struct {
	coll *mongo.Collection
}

func NewPointRepo(db *mongo.Database) *PointRepo {
	if db == nil {
		return &PointRepo{}
	}
	return &PointRepo{coll: db.Collection(defaultPointCollectionName)}
}

func (r *PointRepo) LoadPoint(ctx context.Context, id string) (*entity.Point, error) {
	if r == nil || r.coll == nil {
		return nil, errs.Wrap(OpLoadPoint, errs.KindInfra, errors.New("mongodb point collection is nil"), nil)
	}

	var doc model.PointDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == nil {
		return entity.Hydrate(model.PointDocToState(doc)), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return nil, errs.Wrap(OpLoadPoint, errs.KindInfra, err, map[string]any{"point_id": id})
}

func (r *PointRepo) Save(ctx context.Context, s entity.PointState) error {
	if r == nil || r.coll == nil {
		return errs.Wrap(OpSavePoint, errs.KindInfra, errors.New("mongodb point collection is nil"), nil)
	}
	if s.ID == "" {
		return errs.Wrap(OpSavePoint, errs.KindInfra, errors.New("empty point id"), nil)
	}

	doc := model.PointStateToDoc(s)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(OpSavePoint, errs.KindInfra, err, map[string]any{"point_id": doc.ID})
	}
	return nil
}
