package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

// Mongo persists item layouts as one document per item in a shared
// collection, discriminated by dashboard name. The (dashboard, item.id) pair
// is the natural unique key; create the matching index with EnsureIndexes.
type Mongo struct {
	coll      *mongo.Collection
	dashboard string
}

// itemDoc is the collection schema.
type itemDoc struct {
	Dashboard string          `bson:"dashboard"`
	Item      grid.ItemLayout `bson:"item"`
}

// NewMongo creates a Mongo-backed store for the named dashboard. The
// collection is shared, not owned.
func NewMongo(coll *mongo.Collection, dashboard string) *Mongo {
	return &Mongo{coll: coll, dashboard: dashboard}
}

// EnsureIndexes creates the unique (dashboard, item.id) index. Call once at
// startup; it is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dashboard", Value: 1}, {Key: "item.id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// LoadAll returns every item of the dashboard.
func (m *Mongo) LoadAll(ctx context.Context, _ int) ([]grid.ItemLayout, error) {
	cur, err := m.coll.Find(ctx, bson.M{"dashboard": m.dashboard})
	if err != nil {
		return nil, fmt.Errorf("mongo load %s: %w", m.dashboard, err)
	}
	defer cur.Close(ctx)

	var out []grid.ItemLayout
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode item: %w", err)
		}
		out = append(out, doc.Item)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor %s: %w", m.dashboard, err)
	}
	return out, nil
}

// OnItemsAdded upserts the new items.
func (m *Mongo) OnItemsAdded(ctx context.Context, items []grid.ItemLayout, _ int) error {
	return m.upsert(ctx, items)
}

// OnItemsUpdated overwrites the stored layout of each item.
func (m *Mongo) OnItemsUpdated(ctx context.Context, items []grid.ItemLayout, _ int) error {
	return m.upsert(ctx, items)
}

// OnItemsDeleted removes the items' documents.
func (m *Mongo) OnItemsDeleted(ctx context.Context, items []grid.ItemLayout, _ int) error {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	_, err := m.coll.DeleteMany(ctx, bson.M{
		"dashboard": m.dashboard,
		"item.id":   bson.M{"$in": ids},
	})
	if err != nil {
		return fmt.Errorf("mongo delete from %s: %w", m.dashboard, err)
	}
	return nil
}

func (m *Mongo) upsert(ctx context.Context, items []grid.ItemLayout) error {
	models := make([]mongo.WriteModel, 0, len(items))
	for _, it := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"dashboard": m.dashboard, "item.id": it.ID}).
			SetReplacement(itemDoc{Dashboard: m.dashboard, Item: it}).
			SetUpsert(true))
	}
	if _, err := m.coll.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("mongo write %s: %w", m.dashboard, err)
	}
	return nil
}
