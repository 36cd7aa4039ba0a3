package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/wellnesslabco/glowpost/internal/catalog"
	"github.com/wellnesslabco/glowpost/storage/db"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is the local sqlite cache of catalog products and the audit trail
// of published posts. The JSON posting log remains the source of truth for
// history; rows here exist for querying and catalog reuse between runs.
type Storage struct {
	db      *sql.DB
	Queries *db.Queries
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqliteDB, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("running database migrations", "database", dbPath)
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(sqliteDB, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storage{
		db:      sqliteDB,
		Queries: db.New(sqliteDB),
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

// FetchCandidates makes Storage a catalog.Provider backed by the local cache.
func (s *Storage) FetchCandidates(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.Queries.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query products: %v", catalog.ErrUnavailable, err)
	}

	products := make([]catalog.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, catalog.Product{
			ASIN:       row.Asin,
			Name:       row.Name,
			Bestseller: row.Bestseller != 0,
		})
	}
	return products, nil
}

// SaveCandidates caches a fetched candidate list, preserving catalog order.
func (s *Storage) SaveCandidates(ctx context.Context, products []catalog.Product) error {
	for i, product := range products {
		bestseller := int64(0)
		if product.Bestseller {
			bestseller = 1
		}
		err := s.Queries.UpsertProduct(ctx, db.UpsertProductParams{
			ID:         ulid.Make().String(),
			Asin:       product.ASIN,
			Name:       product.Name,
			Bestseller: bestseller,
			Position:   int64(i),
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", product.ASIN, err)
		}
	}
	return nil
}

// PostAudit describes one published post for the audit table.
type PostAudit struct {
	ASIN              string
	ProductName       string
	AffiliateLink     string
	PinID             string
	BoardID           string
	ImagePath         string
	DescriptionSource string
}

// RecordPost writes an audit row for a published post.
func (s *Storage) RecordPost(ctx context.Context, audit PostAudit) error {
	return s.Queries.CreatePost(ctx, db.CreatePostParams{
		ID:                ulid.Make().String(),
		Asin:              audit.ASIN,
		ProductName:       audit.ProductName,
		AffiliateLink:     audit.AffiliateLink,
		PinID:             nullString(audit.PinID),
		BoardID:           nullString(audit.BoardID),
		ImagePath:         nullString(audit.ImagePath),
		DescriptionSource: audit.DescriptionSource,
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
