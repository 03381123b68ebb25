package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// MigrationResult reports how many documents a migration touched.
type MigrationResult struct {
	Matched  int64
	Modified int64
}

// RenameTimeLogField renames a top-level field on every time log that still
// carries it. Re-running the migration matches nothing.
func (r *TimeLogRepository) RenameTimeLogField(ctx context.Context, from, to string) (MigrationResult, error) {
	if err := validateFieldRename(from, to); err != nil {
		return MigrationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{from: bson.M{"$exists": true}},
		bson.M{"$rename": bson.M{from: to}},
	)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return MigrationResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func validateFieldRename(from, to string) error {
	for _, name := range []string{from, to} {
		switch {
		case strings.TrimSpace(name) == "":
			return fmt.Errorf("field names must not be empty")
		case name == "_id":
			return fmt.Errorf("the _id field cannot be renamed")
		case strings.HasPrefix(name, "$"), strings.Contains(name, "."):
			return fmt.Errorf("invalid field name %q", name)
		}
	}
	if from == to {
		return fmt.Errorf("source and target field are both %q", from)
	}
	return nil
}
