package mongo

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

const collectionTimeLogs = "time_logs"

// TimeLogRepository implements ports.TimeLogRepository using MongoDB.
type TimeLogRepository struct {
	col *mongo.Collection
}

func NewTimeLogRepository(db *mongo.Database) *TimeLogRepository {
	return &TimeLogRepository{col: db.Collection(collectionTimeLogs)}
}

func (r *TimeLogRepository) Create(ctx context.Context, l *domain.TimeLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, l)
	return err
}

func (r *TimeLogRepository) FindByID(ctx context.Context, id string) (*domain.TimeLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.TimeLog
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTimeLogNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *TimeLogRepository) Find(ctx context.Context, f ports.TimeLogFilter) ([]*domain.TimeLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, buildTimeLogFilter(f), findOptions(f))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	logs := make([]*domain.TimeLog, 0)
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// buildTimeLogFilter translates a TimeLogFilter into a query document.
// Documents written before the invoiced flag existed count as unbilled.
func buildTimeLogFilter(f ports.TimeLogFilter) bson.M {
	filter := bson.M{}
	if f.Project != "" {
		filter["project"] = f.Project
	}
	if f.Client != "" {
		filter["client"] = f.Client
	}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	if f.Invoiced == nil {
		return filter
	}

	clauses := bson.A{invoicedClause(*f.Invoiced)}
	if f.OrInvoiceID != "" {
		clauses = append(clauses, bson.M{"invoice_id": f.OrInvoiceID})
	}
	if len(f.OrIDs) > 0 {
		clauses = append(clauses, bson.M{"_id": bson.M{"$in": f.OrIDs}})
	}
	if len(clauses) == 1 {
		filter["invoiced"] = invoicedClause(*f.Invoiced)["invoiced"]
		return filter
	}
	filter["$or"] = clauses
	return filter
}

func invoicedClause(invoiced bool) bson.M {
	if invoiced {
		return bson.M{"invoiced": true}
	}
	return bson.M{"invoiced": bson.M{"$ne": true}}
}

func findOptions(f ports.TimeLogFilter) *options.FindOptions {
	opts := options.Find()
	if f.SortBy != "" {
		dir := 1
		if f.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: string(f.SortBy), Value: dir}, {Key: "_id", Value: dir}})
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return opts
}

// timeLogSet returns the $set document of a patch, without updated_at.
func timeLogSet(p domain.TimeLogPatch) bson.M {
	set := bson.M{}
	if p.Project != nil {
		set["project"] = *p.Project
	}
	if p.Client != nil {
		set["client"] = *p.Client
	}
	if p.StartTime != nil {
		set["start_time"] = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		set["end_time"] = p.EndTime.UTC()
	}
	if p.Hours != nil {
		set["hours"] = *p.Hours
	}
	if p.Rate != nil {
		set["rate"] = *p.Rate
	}
	if p.RateType != nil {
		set["rate_type"] = string(*p.RateType)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	return set
}

// changedClause matches documents where at least one field of set differs,
// so bulk writes leave already-converged documents (and their updated_at)
// alone.
func changedClause(set bson.M) bson.A {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make(bson.A, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, bson.M{k: bson.M{"$ne": set[k]}})
	}
	return clauses
}

func (r *TimeLogRepository) Update(ctx context.Context, id string, p domain.TimeLogPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := timeLogSet(p)
	set["updated_at"] = time.Now().UTC()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTimeLogNotFound
	}
	return nil
}

// UpdateIfBounds filters on the interval the caller read, so an edit that
// raced another bound change matches nothing instead of storing hours for a
// stale interval.
func (r *TimeLogRepository) UpdateIfBounds(ctx context.Context, id string, start, end time.Time, p domain.TimeLogPatch) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := timeLogSet(p)
	set["updated_at"] = time.Now().UTC()

	filter := bson.M{"_id": id, "start_time": start.UTC(), "end_time": end.UTC()}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, domain.ErrTimeLogNotFound
	}
	return false, nil
}

func (r *TimeLogRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTimeLogNotFound
	}
	return nil
}

func (r *TimeLogRepository) UpdateMany(ctx context.Context, ids []string, p domain.TimeLogPatch) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.updateWhereChanged(ctx, bson.M{"_id": bson.M{"$in": ids}}, p)
}

func (r *TimeLogRepository) UpdateByProject(ctx context.Context, project string, p domain.TimeLogPatch) (int64, error) {
	return r.updateWhereChanged(ctx, bson.M{"project": project}, p)
}

func (r *TimeLogRepository) updateWhereChanged(ctx context.Context, base bson.M, p domain.TimeLogPatch) (int64, error) {
	set := timeLogSet(p)
	if len(set) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": changedClause(set)}
	for k, v := range base {
		filter[k] = v
	}
	set["updated_at"] = time.Now().UTC()

	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClaimForInvoice only matches unbilled logs, so two composers racing for the
// same log cannot both claim it.
func (r *TimeLogRepository) ClaimForInvoice(ctx context.Context, invoiceID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":      bson.M{"$in": ids},
		"invoiced": bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{
		"invoiced":   true,
		"invoice_id": invoiceID,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// AdoptLegacyClaims tags billed logs that predate invoice tagging with
// invoiceID. Logs already tagged are left alone.
func (r *TimeLogRepository) AdoptLegacyClaims(ctx context.Context, invoiceID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        bson.M{"$in": ids},
		"invoiced":   true,
		"invoice_id": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{"$set": bson.M{"invoice_id": invoiceID, "updated_at": time.Now().UTC()}}

	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *TimeLogRepository) ReleaseClaim(ctx context.Context, invoiceID string, ids []string) (int64, error) {
	filter := bson.M{"invoice_id": invoiceID}
	if len(ids) > 0 {
		filter["_id"] = bson.M{"$in": ids}
	}
	return r.release(ctx, filter)
}

func (r *TimeLogRepository) ReleaseClaimExcept(ctx context.Context, invoiceID string, keep []string) (int64, error) {
	filter := bson.M{"invoice_id": invoiceID}
	if len(keep) > 0 {
		filter["_id"] = bson.M{"$nin": keep}
	}
	return r.release(ctx, filter)
}

func (r *TimeLogRepository) release(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"invoiced": false, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"invoice_id": ""},
	}
	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the indexes backing the unbilled, history and claim
// queries.
func (r *TimeLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "invoiced", Value: 1}, {Key: "start_time", Value: -1}}},
		{Keys: bson.D{{Key: "invoice_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "end_time", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
