// Command seed-db prepares a fresh database: it runs the schema, writes the
// default business configuration, loads a starter catalog, and creates the
// first employee account.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lorandme/restaurant-api/internal/domain/auth"
	"github.com/lorandme/restaurant-api/internal/domain/settings"
	"github.com/lorandme/restaurant-api/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
		skipCatalog   bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "", "email for the first employee account (or RESTO_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the first employee account (or RESTO_SEED_ADMIN_PASSWORD env)")
	flag.BoolVar(&skipCatalog, "skip-catalog", false, "skip seeding the sample catalog")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("RESTO_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("RESTO_SEED_ADMIN_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email/--admin-password or the RESTO_SEED_ADMIN_* envs")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword, skipCatalog); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string, skipCatalog bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedConfig(ctx, pool); err != nil {
		return errors.Wrap(err, "seed config")
	}

	if !skipCatalog {
		if err := seedCatalog(ctx, pool); err != nil {
			return errors.Wrap(err, "seed catalog")
		}
	}

	if err := seedEmployee(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed employee")
	}

	return nil
}

// seedConfig writes the default business parameters. Existing values are
// left alone so reseeding never reverts staff tuning.
func seedConfig(ctx context.Context, pool *pgxpool.Pool) error {
	defaults := []struct {
		key, value, description string
	}{
		{settings.KeyDeliveryFee, settings.DefaultDeliveryFee.String(), "flat delivery fee"},
		{settings.KeyMinOrderForFreeDelivery, settings.DefaultMinOrderForFreeDelivery.String(), "subtotal for free delivery"},
		{settings.KeyOrderDiscountPercentage, settings.DefaultOrderDiscountPercentage.String(), "loyalty discount percent"},
		{settings.KeyMenuDiscountPercentage, settings.DefaultMenuDiscountPercentage.String(), "menu price reduction percent"},
		{settings.KeyMinOrdersForDiscount, "5", "orders needed for the loyalty discount"},
		{settings.KeyOrdersPeriodForDiscount, "30", "loyalty lookback window in days"},
		{settings.KeyLowStockThreshold, settings.DefaultLowStockThreshold.String(), "low stock report threshold"},
	}

	slog.Info("seeding configuration defaults", slog.Int("count", len(defaults)))

	for _, d := range defaults {
		_, err := pool.Exec(ctx, `INSERT INTO app_config (config_key, config_value, description)
			VALUES ($1, $2, $3) ON CONFLICT (config_key) DO NOTHING`,
			d.key, d.value, d.description)
		if err != nil {
			return errors.Wrapf(err, "insert config %s", d.key)
		}
	}
	return nil
}

type seedProduct struct {
	name     string
	price    string
	portion  string
	unit     string
	stock    string
	category string
}

var sampleProducts = []seedProduct{
	{"Goulash Soup", "9.50", "400", "ml", "40", "Soups"},
	{"Fisherman's Soup", "12.00", "400", "ml", "25", "Soups"},
	{"Wiener Schnitzel", "18.50", "300", "g", "30", "Mains"},
	{"Chicken Paprikash", "16.00", "350", "g", "35", "Mains"},
	{"Stuffed Cabbage", "15.50", "400", "g", "20", "Mains"},
	{"Somloi Sponge Cake", "7.50", "200", "g", "15", "Desserts"},
	{"Chestnut Puree", "6.50", "150", "g", "18", "Desserts"},
	{"Lemonade", "4.00", "500", "ml", "60", "Drinks"},
	{"Mineral Water", "2.50", "500", "ml", "80", "Drinks"},
}

// seedCatalog loads a small starter menu so a fresh install is browsable.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding sample catalog", slog.Int("products", len(sampleProducts)))

	for _, p := range sampleProducts {
		var categoryID int64
		err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING category_id`, p.category).Scan(&categoryID)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", p.category)
		}

		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for %s", p.name)
		}

		_, err = pool.Exec(ctx, `INSERT INTO products
			(name, price, portion_quantity, portion_unit, total_quantity, category_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO NOTHING`,
			p.name, price, p.portion, p.unit, p.stock, categoryID)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.name)
		}

		slog.Info("seeded product", slog.String("name", p.name), slog.String("category", p.category))
	}
	return nil
}

// seedEmployee creates the first staff account so the back office is
// reachable. An existing account with the same email is left untouched.
func seedEmployee(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	tag, err := pool.Exec(ctx, `INSERT INTO users
		(first_name, last_name, email, password_hash, user_type)
		VALUES ('Admin', 'Admin', $1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		email, string(hash), auth.RoleEmployee)
	if err != nil {
		return errors.Wrapf(err, "insert employee %s", email)
	}

	if tag.RowsAffected() == 0 {
		slog.Info("employee already exists, skipping", slog.String("email", email))
	} else {
		slog.Info("seeded employee account", slog.String("email", email))
	}
	return nil
}
