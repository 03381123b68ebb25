package mongo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Query builders
// ---------------------------------------------------------------------------

func TestBuildTimeLogFilter(t *testing.T) {
	unbilled := false
	billed := true

	cases := []struct {
		name string
		in   ports.TimeLogFilter
		want bson.M
	}{
		{"empty", ports.TimeLogFilter{}, bson.M{}},
		{
			"unbilled project",
			ports.TimeLogFilter{Project: "Website", Invoiced: &unbilled},
			bson.M{"project": "Website", "invoiced": bson.M{"$ne": true}},
		},
		{
			"billed client",
			ports.TimeLogFilter{Client: "Acme", Invoiced: &billed},
			bson.M{"client": "Acme", "invoiced": true},
		},
		{
			"id set",
			ports.TimeLogFilter{IDs: []string{"a", "b"}},
			bson.M{"_id": bson.M{"$in": []string{"a", "b"}}},
		},
		{
			"eligible for invoice",
			ports.TimeLogFilter{Invoiced: &unbilled, OrInvoiceID: "inv-1", OrIDs: []string{"x"}},
			bson.M{"$or": bson.A{
				bson.M{"invoiced": bson.M{"$ne": true}},
				bson.M{"invoice_id": "inv-1"},
				bson.M{"_id": bson.M{"$in": []string{"x"}}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := buildTimeLogFilter(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("filter = %#v\nwant     %#v", got, tc.want)
			}
		})
	}
}

func TestFindOptions(t *testing.T) {
	opts := findOptions(ports.TimeLogFilter{SortBy: ports.SortByEndTime, SortDesc: true, Limit: 10})
	wantSort := bson.D{{Key: "end_time", Value: -1}, {Key: "_id", Value: -1}}
	if !reflect.DeepEqual(opts.Sort, wantSort) {
		t.Errorf("sort = %#v", opts.Sort)
	}
	if opts.Limit == nil || *opts.Limit != 10 {
		t.Errorf("limit = %v", opts.Limit)
	}

	plain := findOptions(ports.TimeLogFilter{})
	if plain.Sort != nil || plain.Limit != nil {
		t.Errorf("expected no sort or limit, got %#v", plain)
	}
}

func TestTimeLogSetAndChangedClause(t *testing.T) {
	patch := domain.FixedRatePatch()
	set := timeLogSet(patch)
	want := bson.M{"rate": -1.0, "rate_type": "fixed"}
	if !reflect.DeepEqual(set, want) {
		t.Fatalf("set = %#v", set)
	}

	clause := changedClause(set)
	wantClause := bson.A{
		bson.M{"rate": bson.M{"$ne": -1.0}},
		bson.M{"rate_type": bson.M{"$ne": "fixed"}},
	}
	if !reflect.DeepEqual(clause, wantClause) {
		t.Errorf("clause = %#v", clause)
	}
}

func TestProjectUpdateDoc(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	name := "Web Platform"
	doc := projectUpdateDoc(domain.ProjectPatch{
		Name:        &name,
		SetFields:   domain.CustomFields{"po": "PO-1", "keep": 1.0},
		UnsetFields: []string{"old", "keep"},
	}, now)

	want := bson.M{
		"$set": bson.M{
			"updated_at":         now,
			"name":               "Web Platform",
			"custom_fields.po":   "PO-1",
			"custom_fields.keep": 1.0,
		},
		"$unset": bson.M{"custom_fields.old": ""},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("update = %#v", doc)
	}
}

func TestInvoiceSet(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	status := domain.InvoicePaid
	total := 500.0
	set := invoiceSet(domain.InvoiceUpdate{Status: &status, Total: &total}, now)
	want := bson.M{"updated_at": now, "status": "paid", "total": 500.0}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("set = %#v", set)
	}
}

func TestValidateFieldRename(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{"project", "projectName", true},
		{"", "x", false},
		{"project", "project", false},
		{"_id", "id", false},
		{"$project", "p", false},
		{"a.b", "c", false},
	}
	for _, tc := range cases {
		err := validateFieldRename(tc.from, tc.to)
		if (err == nil) != tc.ok {
			t.Errorf("validateFieldRename(%q, %q) = %v", tc.from, tc.to, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Driver round trips against a mock deployment
// ---------------------------------------------------------------------------

func TestTimeLogRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "billing.time_logs", mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrTimeLogNotFound) {
			t.Errorf("expected ErrTimeLogNotFound, got %v", err)
		}
	})

	mt.Run("find decodes documents", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "billing.time_logs", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "a"},
				{Key: "project", Value: "Website"},
				{Key: "client", Value: "Acme"},
				{Key: "start_time", Value: start},
				{Key: "end_time", Value: start.Add(2 * time.Hour)},
				{Key: "hours", Value: 2.0},
				{Key: "rate", Value: 75.0},
				{Key: "rate_type", Value: "hourly"},
				{Key: "invoiced", Value: false},
			},
		))

		logs, err := repo.Find(context.Background(), ports.TimeLogFilter{Project: "Website"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(logs) != 1 || logs[0].ID != "a" || logs[0].Hours != 2 || logs[0].RateType != domain.RateHourly {
			t.Errorf("unexpected logs: %+v", logs)
		}
	})

	mt.Run("claim reports modified count", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		n, err := repo.ClaimForInvoice(context.Background(), "inv-1", []string{"a", "b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("claimed = %d, want 1", n)
		}
	})

	mt.Run("update of missing log", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		desc := "x"
		err := repo.Update(context.Background(), "missing", domain.TimeLogPatch{Description: &desc})
		if !errors.Is(err, domain.ErrTimeLogNotFound) {
			t.Errorf("expected ErrTimeLogNotFound, got %v", err)
		}
	})

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	hours := 3.0
	newEnd := start.Add(3 * time.Hour)
	boundPatch := domain.TimeLogPatch{StartTime: &start, EndTime: &newEnd, Hours: &hours}

	mt.Run("bound update matched", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		ok, err := repo.UpdateIfBounds(context.Background(), "a", start, end, boundPatch)
		if err != nil || !ok {
			t.Errorf("expected applied update, got ok=%v err=%v", ok, err)
		}
	})

	mt.Run("bound update after interval moved", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "billing.time_logs", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: 1}}),
		)

		ok, err := repo.UpdateIfBounds(context.Background(), "a", start, end, boundPatch)
		if err != nil || ok {
			t.Errorf("expected unapplied update without error, got ok=%v err=%v", ok, err)
		}
	})

	mt.Run("adopt legacy claims reports modified count", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		n, err := repo.AdoptLegacyClaims(context.Background(), "inv-old", []string{"a", "k"})
		if err != nil || n != 1 {
			t.Errorf("adopted = %d, err = %v; want 1", n, err)
		}
	})

	mt.Run("bound update of missing log", func(mt *mtest.T) {
		repo := &TimeLogRepository{col: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "billing.time_logs", mtest.FirstBatch),
		)

		_, err := repo.UpdateIfBounds(context.Background(), "missing", start, end, boundPatch)
		if !errors.Is(err, domain.ErrTimeLogNotFound) {
			t.Errorf("expected ErrTimeLogNotFound, got %v", err)
		}
	})
}

func TestProjectRepository_DuplicateName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := &ProjectRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Create(context.Background(), &domain.Project{ID: "p1", Name: "Website"})
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != "name" {
			t.Errorf("expected name validation error, got %v", err)
		}
	})
}
