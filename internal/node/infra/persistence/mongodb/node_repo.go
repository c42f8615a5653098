package mongodb

import (
	"context"
	"errors"

	"Foam/internal/node/entity"
	"Foam/internal/node/infra/persistence/model"
	"Foam/internal/shared/errs"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultNodeCollectionName = "node"

const (
	OpLoadNode = "repo.node.LoadNode"
	OpSaveNode = "repo.node.Save"
)

type NodeRepo struct {
	coll *mongo.Collection
}

func NewNodeRepo(db *mongo.Database) *NodeRepo {
	if db == nil {
		return &NodeRepo{}
	}
	return &NodeRepo{coll: db.Collection(defaultNodeCollectionName)}
}

func (r *NodeRepo) LoadNode(ctx context.Context, username string) (*entity.Node, error) {
	if r == nil || r.coll == nil {
		return nil, errs.Wrap(OpLoadNode, errs.KindInfra, errors.New("mongodb node collection is nil"), nil)
	}

	var doc model.NodeDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": username}).Decode(&doc)
	if err == nil {
		return entity.Hydrate(model.NodeDocToState(doc)), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return nil, errs.Wrap(OpLoadNode, errs.KindInfra, err, map[string]any{"username": username})
}

func (r *NodeRepo) Save(ctx context.Context, s entity.NodeState) error {
	if r == nil || r.coll == nil {
		return errs.Wrap(OpSaveNode, errs.KindInfra, errors.New("mongodb node collection is nil"), nil)
	}

	doc := model.NodeStateToDoc(s)
	if doc.Username == "" {
		return errs.Wrap(OpSaveNode, errs.KindInfra, errors.New("empty username"), nil)
	}

	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.Username},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errs.Wrap(OpSaveNode, errs.KindInfra, err, map[string]any{"username": doc.Username})
	}
	return nil
}
