package reservations

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const tableSeedApplication = "reservations"

type bootstrapSeedDocument struct {
	Tables []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number int `json:"number"`
}

func loadTableSeeds(seedFS embed.FS) ([]tableSeed, error) {
	seedBytes, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode table seed file: %w", err)
	}

	if len(doc.Tables) == 0 {
		return nil, errors.New("seed file does not contain tables")
	}

	return doc.Tables, nil
}

// ApplyTableSeeds ensures all predefined tables exist.
func ApplyTableSeeds(ctx context.Context, repo TableRepo, db *mongo.Database, seedFS embed.FS, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}
	if db == nil {
		return errors.New("database is required for seed tracking")
	}

	seedDocs, err := loadTableSeeds(seedFS)
	if err != nil {
		return err
	}

	var defs []seed.Seed
	for _, s := range seedDocs {
		seedData := s
		if seedData.Number <= 0 {
			logger.Info("Skipping seed table with non-positive number")
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-03-02_table_%d", seedData.Number),
			Description: fmt.Sprintf("Ensure table %d exists", seedData.Number),
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, logger)
			},
		})
	}

	if len(defs) == 0 {
		logger.Info("No table seeds to apply")
		return nil
	}

	logger.Info("Applying table seeds")
	if err := seed.Apply(ctx, seed.NewMongoTracker(db), defs, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Table seeds applied successfully")
	return nil
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, logger aqm.Logger) error {
	existing, err := repo.GetByNumber(ctx, s.Number)
	if err != nil {
		return fmt.Errorf("lookup seed table %d: %w", s.Number, err)
	}
	if existing != nil {
		logger.Info("Seed table already exists", "number", s.Number)
		return nil
	}

	table := NewTable()
	table.Number = s.Number
	table.CreatedBy = "seed:bootstrap"
	table.BeforeCreate()

	if err := repo.Create(ctx, table); err != nil {
		return fmt.Errorf("create seed table %d: %w", s.Number, err)
	}

	logger.Info("Seed table created", "number", s.Number, "id", table.ID.String())
	return nil
}

// SeedingFunc returns a lifecycle OnStart-compatible function which applies
// table seeds in the background.
func SeedingFunc(seedCtx context.Context, repo TableRepo, db *mongo.Database, seedFS embed.FS, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting table seeding in background")
		go func() {
			if err := ApplyTableSeeds(seedCtx, repo, db, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Table seeds failed: %v", err)
			}
		}()
		return nil
	}
}

// StopFunc returns a lifecycle OnStop-compatible function which cancels any
// background seeding goroutine.
func StopFunc(cancelFunc context.CancelFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cancelFunc != nil {
			cancelFunc()
		}
		return nil
	}
}
