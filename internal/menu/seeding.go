package menu

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const menuSeedApplication = "menu"

type bootstrapSeedDocument struct {
	MenuItems []menuItemSeed `json:"menu_items"`
}

type menuItemSeed struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func loadMenuItemSeeds(seedFS embed.FS) ([]menuItemSeed, error) {
	seedBytes, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode menu seed file: %w", err)
	}

	if len(doc.MenuItems) == 0 {
		return nil, errors.New("seed file does not contain menu items")
	}

	return doc.MenuItems, nil
}

// ApplyMenuSeeds ensures the default menu catalog exists.
func ApplyMenuSeeds(ctx context.Context, repo MenuItemRepo, db *mongo.Database, seedFS embed.FS, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("menu item repository is required")
	}
	if db == nil {
		return errors.New("database is required for seed tracking")
	}

	seedDocs, err := loadMenuItemSeeds(seedFS)
	if err != nil {
		return err
	}

	var defs []seed.Seed
	for _, s := range seedDocs {
		seedData := s
		if strings.TrimSpace(seedData.Name) == "" {
			logger.Info("Skipping seed menu item with empty name")
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2025-03-02_menu_%s", seedIdentifier(seedData.Name)),
			Description: fmt.Sprintf("Ensure menu item %q exists", seedData.Name),
			Run: func(ctx context.Context) error {
				return seedData.ensureMenuItem(ctx, repo, logger)
			},
		})
	}

	if len(defs) == 0 {
		logger.Info("No menu seeds to apply")
		return nil
	}

	logger.Info("Applying menu seeds")
	if err := seed.Apply(ctx, seed.NewMongoTracker(db), defs, menuSeedApplication); err != nil {
		return err
	}
	logger.Info("Menu seeds applied successfully")
	return nil
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}

	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_", "\\", "_", "&", "and")
	value = replacer.Replace(value)

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		}
	}

	result := builder.String()
	if result == "" {
		return "seed"
	}
	return result
}

func (s menuItemSeed) ensureMenuItem(ctx context.Context, repo MenuItemRepo, logger aqm.Logger) error {
	existing, err := repo.GetByName(ctx, s.Name)
	if err != nil {
		return fmt.Errorf("lookup seed menu item %q: %w", s.Name, err)
	}
	if existing != nil {
		logger.Info("Seed menu item already exists", "name", s.Name)
		return nil
	}

	item := NewMenuItem()
	item.Name = s.Name
	item.Description = s.Description
	item.Price = s.Price
	item.Category = s.Category
	item.CreatedBy = "seed:bootstrap"
	item.UpdatedBy = "seed:bootstrap"
	item.BeforeCreate()

	if err := repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create seed menu item %q: %w", s.Name, err)
	}

	logger.Info("Seed menu item created", "name", s.Name, "id", item.ID.String())
	return nil
}

// SeedingFunc returns a lifecycle OnStart-compatible function which applies
// menu seeds in the background.
func SeedingFunc(seedCtx context.Context, repo MenuItemRepo, db *mongo.Database, seedFS embed.FS, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting menu seeding in background")
		go func() {
			if err := ApplyMenuSeeds(seedCtx, repo, db, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Menu seeds failed: %v", err)
			}
		}()
		return nil
	}
}
