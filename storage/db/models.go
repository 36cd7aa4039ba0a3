package db

import (
	"database/sql"
	"time"
)

type Product struct {
	ID         string
	Asin       string
	Name       string
	Bestseller int64
	Position   int64
	FetchedAt  time.Time
}

type Post struct {
	ID                string
	Asin              string
	ProductName       string
	AffiliateLink     string
	PinID             sql.NullString
	BoardID           sql.NullString
	ImagePath         sql.NullString
	DescriptionSource string
	PostedAt          time.Time
}
