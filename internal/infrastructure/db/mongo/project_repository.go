package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hourbook/billing/internal/core/domain"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewValidationError("name", fmt.Sprintf("project %q already exists", p.Name))
		}
		return err
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *ProjectRepository) findOne(ctx context.Context, filter bson.M) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	err := r.col.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every project ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	projects := make([]*domain.Project, 0)
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch domain.ProjectPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, projectUpdateDoc(patch, time.Now().UTC()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewValidationError("name", "project name already exists")
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// projectUpdateDoc builds the update for a project patch. Custom fields are
// set and unset individually so unrelated fields survive; a field named in
// both lists is set.
func projectUpdateDoc(p domain.ProjectPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Client != nil {
		set["client"] = *p.Client
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Rate != nil {
		set["rate"] = *p.Rate
	}
	if p.RateType != nil {
		set["rate_type"] = string(*p.RateType)
	}
	for k, v := range p.SetFields {
		set["custom_fields."+k] = v
	}

	update := bson.M{"$set": set}

	unset := bson.M{}
	for _, k := range p.UnsetFields {
		if _, ok := p.SetFields[k]; ok {
			continue
		}
		unset["custom_fields."+k] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
