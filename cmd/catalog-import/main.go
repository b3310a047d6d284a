// Command catalog-import loads product rows from gzipped CSV exports into
// the catalog. Inventory systems export one file per warehouse and the
// files overlap heavily, so rows are deduplicated by product name while
// streaming; the first occurrence wins.
//
// Expected CSV columns: name, price, portion_quantity, portion_unit,
// total_quantity, category.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lorandme/restaurant-api/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.0001
	rowBuffer     = 1024
	progressEvery = 10_000
)

type productRow struct {
	name     string
	price    decimal.Decimal
	portion  decimal.Decimal
	unit     string
	stock    decimal.Decimal
	category string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz export files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files in %s", dataDir)
	}

	slog.Info("importing catalog exports", slog.Int("files", len(files)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Parsers fan rows into one channel; a single writer owns the bloom
	// filter and the database connection, so no locking is needed.
	rows := make(chan productRow, rowBuffer)

	g, ctx := errgroup.WithContext(ctx)
	parsers, ctx := errgroup.WithContext(ctx)

	for _, f := range files {
		parsers.Go(parseFile(ctx, f, rows))
	}
	g.Go(func() error {
		defer close(rows)
		return parsers.Wait()
	})
	g.Go(func() error {
		return writeRows(ctx, pool, rows)
	})

	return g.Wait()
}

// parseFile streams one gzipped CSV export and sends its rows downstream.
func parseFile(ctx context.Context, path string, rows chan<- productRow) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		r := csv.NewReader(gz)
		r.FieldsPerRecord = 6
		r.TrimLeadingSpace = true

		var count uint64
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			row, err := parseRecord(record)
			if err != nil {
				slog.Warn("skipping malformed row",
					slog.String("file", filepath.Base(path)),
					slog.String("error", err.Error()),
				)
				continue
			}

			select {
			case rows <- row:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("rows", count),
				)
			}
		}

		slog.Info("parse complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("rows", count),
		)
		return nil
	}
}

func parseRecord(record []string) (productRow, error) {
	name := strings.TrimSpace(record[0])
	category := strings.TrimSpace(record[5])
	if name == "" || category == "" {
		return productRow{}, errors.New("empty name or category")
	}

	price, err := decimal.NewFromString(record[1])
	if err != nil {
		return productRow{}, errors.Wrapf(err, "price of %q", name)
	}
	portion, err := decimal.NewFromString(record[2])
	if err != nil {
		return productRow{}, errors.Wrapf(err, "portion of %q", name)
	}
	stock, err := decimal.NewFromString(record[4])
	if err != nil {
		return productRow{}, errors.Wrapf(err, "stock of %q", name)
	}

	return productRow{
		name:     name,
		price:    price,
		portion:  portion,
		unit:     strings.TrimSpace(record[3]),
		stock:    stock,
		category: category,
	}, nil
}

// writeRows upserts deduplicated rows. The bloom filter drops repeats
// cheaply; its rare false positives only skip an import row, never corrupt
// existing data.
func writeRows(ctx context.Context, pool *pgxpool.Pool, rows <-chan productRow) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	categoryIDs := make(map[string]int64)

	var written, skipped uint64
	for row := range rows {
		if seen.TestOrAddString(row.name) {
			skipped++
			continue
		}

		categoryID, ok := categoryIDs[row.category]
		if !ok {
			err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING category_id`, row.category).Scan(&categoryID)
			if err != nil {
				return errors.Wrapf(err, "upsert category %s", row.category)
			}
			categoryIDs[row.category] = categoryID
		}

		_, err := pool.Exec(ctx, `INSERT INTO products
			(name, price, portion_quantity, portion_unit, total_quantity, category_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO UPDATE SET
				price = EXCLUDED.price,
				portion_quantity = EXCLUDED.portion_quantity,
				portion_unit = EXCLUDED.portion_unit,
				total_quantity = EXCLUDED.total_quantity,
				category_id = EXCLUDED.category_id`,
			row.name, row.price, row.portion, row.unit, row.stock, categoryID)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", row.name)
		}

		written++
		if written%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("written", written), slog.Uint64("skipped", skipped))
		}
	}

	slog.Info("write complete", slog.Uint64("written", written), slog.Uint64("skipped", skipped))
	return nil
}
