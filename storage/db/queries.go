package db

import (
	"context"
	"database/sql"
)

const upsertProduct = `
INSERT INTO products (id, asin, name, bestseller, position)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (asin) DO UPDATE SET
    name = excluded.name,
    bestseller = excluded.bestseller,
    position = excluded.position,
    fetched_at = CURRENT_TIMESTAMP
`

type UpsertProductParams struct {
	ID         string
	Asin       string
	Name       string
	Bestseller int64
	Position   int64
}

func (q *Queries) UpsertProduct(ctx context.Context, arg UpsertProductParams) error {
	_, err := q.db.ExecContext(ctx, upsertProduct,
		arg.ID,
		arg.Asin,
		arg.Name,
		arg.Bestseller,
		arg.Position,
	)
	return err
}

const listProducts = `
SELECT id, asin, name, bestseller, position, fetched_at
FROM products
ORDER BY position, asin
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Asin, &p.Name, &p.Bestseller, &p.Position, &p.FetchedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createPost = `
INSERT INTO posts (id, asin, product_name, affiliate_link, pin_id, board_id, image_path, description_source)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreatePostParams struct {
	ID                string
	Asin              string
	ProductName       string
	AffiliateLink     string
	PinID             sql.NullString
	BoardID           sql.NullString
	ImagePath         sql.NullString
	DescriptionSource string
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) error {
	_, err := q.db.ExecContext(ctx, createPost,
		arg.ID,
		arg.Asin,
		arg.ProductName,
		arg.AffiliateLink,
		arg.PinID,
		arg.BoardID,
		arg.ImagePath,
		arg.DescriptionSource,
	)
	return err
}

const listRecentPosts = `
SELECT id, asin, product_name, affiliate_link, pin_id, board_id, image_path, description_source, posted_at
FROM posts
ORDER BY posted_at DESC
LIMIT ?
`

func (q *Queries) ListRecentPosts(ctx context.Context, limit int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listRecentPosts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Asin, &p.ProductName, &p.AffiliateLink, &p.PinID, &p.BoardID, &p.ImagePath, &p.DescriptionSource, &p.PostedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const countPostsForProduct = `
SELECT COUNT(*) FROM posts WHERE asin = ?
`

func (q *Queries) CountPostsForProduct(ctx context.Context, asin string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPostsForProduct, asin).Scan(&count)
	return count, err
}
