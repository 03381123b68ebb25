package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hourbook/billing/internal/core/domain"
)

const collectionInvoices = "invoices"

type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{col: db.Collection(collectionInvoices)}
}

// Insert stores the invoice under its preassigned id; the time logs were
// already claimed with that id.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, inv)
	return err
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invoice
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	invoices := make([]*domain.Invoice, 0)
	if err := cur.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, id string, u domain.InvoiceUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": invoiceSet(u, time.Now().UTC())})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func invoiceSet(u domain.InvoiceUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Number != nil {
		set["number"] = *u.Number
	}
	if u.Date != nil {
		set["date"] = u.Date.UTC()
	}
	if u.Client != nil {
		set["client"] = *u.Client
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.RateType != nil {
		set["rate_type"] = string(*u.RateType)
	}
	if u.Items != nil {
		set["items"] = *u.Items
	}
	if u.TimeLogs != nil {
		set["time_logs"] = *u.TimeLogs
	}
	if u.Subtotal != nil {
		set["subtotal"] = *u.Subtotal
	}
	if u.Total != nil {
		set["total"] = *u.Total
	}
	return set
}

func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "number", Value: 1}}},
		{Keys: bson.D{{Key: "client", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
