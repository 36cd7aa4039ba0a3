package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnesslabco/glowpost/internal/catalog"
)

func TestSaveAndFetchCandidatesPreservesOrder(t *testing.T) {
	s, cleanup, err := NewTestDB()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	in := catalog.DefaultBestsellers()
	require.NoError(t, s.SaveCandidates(ctx, in))

	out, err := s.FetchCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveCandidatesUpsertsByASIN(t *testing.T) {
	s, cleanup, err := NewTestDB()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.SaveCandidates(ctx, []catalog.Product{
		{ASIN: "B1", Name: "Old Name", Bestseller: false},
	}))
	require.NoError(t, s.SaveCandidates(ctx, []catalog.Product{
		{ASIN: "B1", Name: "New Name", Bestseller: true},
	}))

	out, err := s.FetchCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "New Name", out[0].Name)
	assert.True(t, out[0].Bestseller)
}

func TestRecordPostAndListRecent(t *testing.T) {
	s, cleanup, err := NewTestDB()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.RecordPost(ctx, PostAudit{
		ASIN:              "B07NCRQL81",
		ProductName:       "The Ordinary Niacinamide Serum",
		AffiliateLink:     "https://www.amazon.com/dp/B07NCRQL81/?tag=wellnesslabco-20",
		PinID:             "pin-789",
		BoardID:           "board-2",
		ImagePath:         "/tmp/pin.jpg",
		DescriptionSource: "generated",
	}))

	posts, err := s.Queries.ListRecentPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "B07NCRQL81", posts[0].Asin)
	assert.Equal(t, "pin-789", posts[0].PinID.String)
	assert.Equal(t, "generated", posts[0].DescriptionSource)

	count, err := s.Queries.CountPostsForProduct(ctx, "B07NCRQL81")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordPostAllowsEmptyOptionalFields(t *testing.T) {
	s, cleanup, err := NewTestDB()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.RecordPost(ctx, PostAudit{
		ASIN:              "B1",
		ProductName:       "CeraVe Cream",
		AffiliateLink:     "https://www.amazon.com/dp/B1/?tag=wellnesslabco-20",
		DescriptionSource: "template",
	}))

	posts, err := s.Queries.ListRecentPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.False(t, posts[0].PinID.Valid)
	assert.False(t, posts[0].BoardID.Valid)
}
