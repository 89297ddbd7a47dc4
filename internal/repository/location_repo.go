package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"campusduel/internal/model"
)

// LocationRepo is the campus photo/location catalog.
type LocationRepo interface {
	Create(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, id string) (*model.Location, error)
	GetAll(ctx context.Context) ([]*model.Location, error)
	Count(ctx context.Context) (int64, error)

	// SelectUnused picks a random catalog entry whose image has not been
	// used in the match yet. Returns nil when the catalog is exhausted.
	SelectUnused(ctx context.Context, excludeRefs []string) (*model.Location, error)
}

type locationRepo struct {
	collection *mongo.Collection
}

func NewLocationRepo(db *mongo.Database) LocationRepo {
	return &locationRepo{
		collection: db.Collection("locations"),
	}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	if loc.ID == "" {
		loc.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, loc)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&loc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) GetAll(ctx context.Context) ([]*model.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*model.Location
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *locationRepo) SelectUnused(ctx context.Context, excludeRefs []string) (*model.Location, error) {
	if excludeRefs == nil {
		excludeRefs = []string{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"imageRef": bson.M{"$nin": excludeRefs}}}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*model.Location
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return locations[0], nil
}
