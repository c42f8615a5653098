package mongodb

import (
	"context"
	"errors"

	"Foam/internal/link/entity"
	"Foam/internal/link/infra/persistence/model"
	"Foam/internal/shared/errs"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultLinkCollectionName = "link"

const (
	OpLoadLink = "repo.link.LoadLink"
	OpSaveLink = "repo.link.Save"
)

type LinkRepo struct {
	coll *mongo.Collection
}

func NewLinkRepo(db *mongo.Database) *LinkRepo {
	if db == nil {
		return &LinkRepo{}
	}
	return &LinkRepo{coll: db.Collection(defaultLinkCollectionName)}
}

func (r *LinkRepo) LoadLink(ctx context.Context, id string) (*entity.Link, error) {
	if r == nil || r.coll == nil {
		return nil, errs.Wrap(OpLoadLink, errs.KindInfra, errors.New("mongodb link collection is nil"), nil)
	}

	var doc model.LinkDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == nil {
		return entity.Hydrate(model.LinkDocToState(doc)), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return nil, errs.Wrap(OpLoadLink, errs.KindInfra, err, map[string]any{"link_id": id})
}

func (r *LinkRepo) Save(ctx context.Context, s entity.LinkState) error {
	if r == nil || r.coll == nil {
		return errs.Wrap(OpSaveLink, errs.KindInfra, errors.New("mongodb link collection is nil"), nil)
	}
	if s.ID == "" {
		return errs.Wrap(OpSaveLink, errs.KindInfra, errors.New("empty link id"), nil)
	}

	doc := model.LinkStateToDoc(s)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(OpSaveLink, errs.KindInfra, err, map[string]any{"link_id": doc.ID})
	}
	return nil
}
