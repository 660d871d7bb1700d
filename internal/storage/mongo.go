package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"gr_scraper/internal/config"
	"gr_scraper/internal/models"
)

const opTimeout = 10 * time.Second

// Mongo implements Store on a MongoDB documents collection with a unique
// index on pdf_url.
type Mongo struct {
	client    *mongo.Client
	documents *mongo.Collection
	log       *zap.SugaredLogger
}

// NewMongo connects, pings, and ensures indexes. A backend that cannot be
// reached here is a hard error: the pipeline must not run without its
// dedup seed.
func NewMongo(cfg config.DBConfig, log *zap.SugaredLogger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	collection := cfg.Collections.Documents
	if collection == "" {
		collection = "documents"
	}

	m := &Mongo{
		client:    client,
		documents: client.Database(cfg.Database).Collection(collection),
		log:       log,
	}
	if err := m.createIndexes(); err != nil {
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}
	return m, nil
}

func (m *Mongo) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := m.documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pdf_url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil && err.Error() != "index already exists" {
		m.log.Warnw("⚠️ pdf_url index creation failed", "error", err)
	}

	_, err = m.documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "branch", Value: 1}},
	})
	if err != nil && err.Error() != "index already exists" {
		m.log.Warnw("⚠️ branch index creation failed", "error", err)
	}
	return nil
}

// Insert writes the batch in one call; when that fails, it degrades to
// per-record inserts so a single malformed record does not void the run's
// whole harvest.
func (m *Mongo) Insert(ctx context.Context, records []*models.DocumentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}

	ictx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := m.documents.InsertMany(ictx, docs); err == nil {
		return len(records), nil
	} else {
		m.log.Warnw("⚠️ batch insert failed, retrying one at a time", "error", err)
	}

	inserted := 0
	for _, r := range records {
		rctx, rcancel := context.WithTimeout(ctx, opTimeout)
		_, err := m.documents.InsertOne(rctx, r)
		rcancel()
		if err != nil {
			m.log.Warnw("❌ record insert failed", "gr_no", r.GRNo, "error", err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

func searchQuery(filter models.SearchFilter) bson.M {
	query := bson.M{}
	if filter.GRNo != "" {
		query["gr_no"] = bson.M{"$regex": filter.GRNo, "$options": "i"}
	}
	if filter.Branch != "" {
		query["branch"] = string(filter.Branch)
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Subject != "" {
		query["subject"] = bson.M{"$regex": filter.Subject, "$options": "i"}
	}
	return query
}

func (m *Mongo) Search(ctx context.Context, filter models.SearchFilter) ([]*models.DocumentRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := m.documents.Find(sctx, searchQuery(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(sctx)

	var records []*models.DocumentRecord
	if err := cursor.All(sctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *Mongo) ExistingURLs(ctx context.Context) ([]string, error) {
	sctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"pdf_url": 1})
	cursor, err := m.documents.Find(sctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(sctx)

	var urls []string
	for cursor.Next(sctx) {
		var row struct {
			PDFURL string `bson:"pdf_url"`
		}
		if err := cursor.Decode(&row); err == nil && row.PDFURL != "" {
			urls = append(urls, row.PDFURL)
		}
	}
	return urls, cursor.Err()
}

func (m *Mongo) Count(ctx context.Context) (int64, error) {
	cctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return m.documents.CountDocuments(cctx, bson.M{})
}

func (m *Mongo) ByBranch(ctx context.Context, branch models.BranchCode) ([]*models.DocumentRecord, error) {
	return m.Search(ctx, models.SearchFilter{Branch: branch})
}

func (m *Mongo) Branches(ctx context.Context) ([]string, error) {
	bctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	values, err := m.documents.Distinct(bctx, "branch", bson.M{})
	if err != nil {
		return nil, err
	}

	branches := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			branches = append(branches, s)
		}
	}
	return branches, nil
}

func (m *Mongo) Update(ctx context.Context, patch UpdatePatch) error {
	if patch.GRNo == "" {
		return fmt.Errorf("update: gr_no is required")
	}

	set := bson.M{}
	if patch.PDFValid != nil {
		set["pdf_valid"] = *patch.PDFValid
	}
	if patch.PDFStatus != "" {
		set["pdf_status"] = patch.PDFStatus
	}
	if patch.VerificationDate != "" {
		set["verification_date"] = patch.VerificationDate
	}
	if len(set) == 0 {
		return nil
	}

	uctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := m.documents.UpdateMany(uctx, bson.M{"gr_no": patch.GRNo}, bson.M{"$set": set})
	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return m.client.Disconnect(cctx)
}
