// Command promo-ingest bulk-loads promotional discount codes from gzipped
// JSONL dumps. A code only becomes active if it appears in at least two of
// the source files; single-file codes are treated as corrupt entries.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/velora/storefront-api/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10
)

// promoRule is one line of a promo dump.
type promoRule struct {
	code         string
	discountType string
	value        int64
	description  string
}

var defaultRule = promoRule{
	discountType: "percentage",
	value:        10,
	description:  "Valid promo code: 10% off",
}

const upsertPromoSQL = `INSERT INTO discount_codes
	(code, description, discount_type, discount_value, is_active)
	VALUES ($1, $2, $3, $4, TRUE)
	ON CONFLICT (code) DO UPDATE SET
		description = EXCLUDED.description, discount_type = EXCLUDED.discount_type,
		discount_value = EXCLUDED.discount_value, is_active = TRUE`

// fileResult holds candidate codes found in a single file during pass 2.
type fileResult struct {
	candidates map[string]uint
	rules      map[string]promoRule
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing promobaseN.gz files")
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
		slog.Error("promo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("promo ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("promobase%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: Build bloom filters concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: Find candidate codes appearing in 2+ files.
	slog.Info("pass 2: finding candidate codes")

	rules, err := findValidCodes(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find valid codes")
	}

	slog.Info("valid codes found", slog.Int("count", len(rules)))

	if len(rules) == 0 {
		slog.Info("no valid codes to insert")
		return nil
	}

	// Write valid codes to database.
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writePromoCodes(ctx, pool, rules); err != nil {
		return errors.Wrap(err, "write promo codes to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(rule promoRule) {
			filter.AddString(rule.code)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("codes", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_codes", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findValidCodes re-streams each file and checks codes against OTHER files'
// bloom filters. A code is valid if it appears in 2 or more files.
func findValidCodes(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]promoRule, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files; the last rule seen for a code wins.
	merged := make(map[string]uint)
	rules := make(map[string]promoRule)
	for _, r := range results {
		for code, mask := range r.candidates {
			merged[code] |= mask
			rules[code] = r.rules[code]
		}
	}

	// Keep codes appearing in 2+ files.
	valid := make(map[string]promoRule)
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			valid[code] = rules[code]
		}
	}

	return valid, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		candidates := make(map[string]uint)
		rules := make(map[string]promoRule)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(rule promoRule) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("codes", count),
				)
			}

			// Check if this code appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(rule.code) {
					candidates[rule.code] |= fileBit
					rules[rule.code] = rule
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_codes", count),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = fileResult{candidates: candidates, rules: rules}
		return nil
	}
}

// streamGzFile opens a gzip-compressed JSONL file and calls fn for each
// well-formed line with a plausible code. Malformed lines are skipped.
func streamGzFile(ctx context.Context, path string, fn func(rule promoRule)) error {
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

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rule, ok := parsePromoLine(scanner.Bytes())
		if !ok {
			continue
		}
		fn(rule)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// parsePromoLine decodes one JSONL entry. Only the code is required; the
// rule fields fall back to the default promo rule.
func parsePromoLine(line []byte) (promoRule, bool) {
	rule := defaultRule

	d := jx.DecodeBytes(line)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			rule.code = v
			return err
		case "type":
			v, err := d.Str()
			rule.discountType = v
			return err
		case "value":
			v, err := d.Int64()
			rule.value = v
			return err
		case "description":
			v, err := d.Str()
			rule.description = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return promoRule{}, false
	}
	if len(rule.code) < minCodeLen || len(rule.code) > maxCodeLen {
		return promoRule{}, false
	}
	if rule.discountType != "percentage" && rule.discountType != "fixed" {
		return promoRule{}, false
	}
	return rule, true
}

// writePromoCodes upserts all valid promo codes into the database.
func writePromoCodes(ctx context.Context, pool *pgxpool.Pool, rules map[string]promoRule) error {
	slog.Info("writing promo codes to database", slog.Int("count", len(rules)))

	written := 0
	for code, rule := range rules {
		_, err := pool.Exec(ctx, upsertPromoSQL,
			code, rule.description, rule.discountType, rule.value,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert promo code %s", code)
		}

		written++
		if written%100 == 0 || written == len(rules) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(rules)))
		}
	}

	return nil
}
