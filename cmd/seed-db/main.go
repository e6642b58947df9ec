// Command seed-db loads development data: the product catalog with variants
// and a couple of discount codes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/repository"
)

type variantJSON struct {
	ID              string `json:"id"`
	VariantType     string `json:"variant_type"`
	VariantValue    string `json:"variant_value"`
	SKU             string `json:"sku"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int    `json:"stock_quantity"`
}

type productJSON struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Price       int64         `json:"price"`
	Stock       int           `json:"stock"`
	Variants    []variantJSON `json:"variants"`
}

const (
	upsertProductSQL = `INSERT INTO products (id, name, description, category, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			category = EXCLUDED.category, price = EXCLUDED.price, stock = EXCLUDED.stock`

	upsertVariantSQL = `INSERT INTO product_variants
		(id, product_id, variant_type, variant_value, sku, price_adjustment, stock_quantity)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			variant_type = EXCLUDED.variant_type, variant_value = EXCLUDED.variant_value,
			sku = EXCLUDED.sku, price_adjustment = EXCLUDED.price_adjustment,
			stock_quantity = EXCLUDED.stock_quantity`

	upsertDiscountSQL = `INSERT INTO discount_codes
		(code, description, discount_type, discount_value, min_order_amount, usage_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description, discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value, min_order_amount = EXCLUDED.min_order_amount,
			usage_limit = EXCLUDED.usage_limit, is_active = TRUE`
)

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
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

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discount codes")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Category, p.Price, p.Stock,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		for _, v := range p.Variants {
			_, err := pool.Exec(ctx, upsertVariantSQL,
				v.ID, p.ID, v.VariantType, v.VariantValue, v.SKU,
				v.PriceAdjustment, v.StockQuantity,
			)
			if err != nil {
				return errors.Wrapf(err, "upsert variant %s of product %s", v.ID, p.ID)
			}
		}

		slog.Info("upserted product",
			slog.String("id", p.ID),
			slog.String("name", p.Name),
			slog.Int("variants", len(p.Variants)),
		)
	}

	return nil
}

type discountSeed struct {
	code           string
	description    string
	discountType   string
	value          int64
	minOrderAmount int64
	usageLimit     *int
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding discount codes")

	hundred := 100
	seeds := []discountSeed{
		{
			code:         "WELCOME10",
			description:  "10% off your first order",
			discountType: "percentage",
			value:        10,
		},
		{
			code:           "FREESHIP500",
			description:    "500 off orders over 5000",
			discountType:   "fixed",
			value:          500,
			minOrderAmount: 5000,
			usageLimit:     &hundred,
		},
	}

	for _, d := range seeds {
		_, err := pool.Exec(ctx, upsertDiscountSQL,
			d.code, d.description, d.discountType, d.value, d.minOrderAmount, d.usageLimit,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert discount code %s", d.code)
		}

		slog.Info("upserted discount code", slog.String("code", d.code))
	}

	return nil
}
