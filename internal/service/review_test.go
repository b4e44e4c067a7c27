package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/transport"
)

func TestReview_OnePerUserAndRatingRecomputed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "")
	bob := env.register(t, "bobby", "")
	p := env.product(t, "Water Bottle", 400, 20)

	comment := "Keeps water cold all day"
	rv, err := env.reviews.Create(ctx, alice.ID, p.ID, transport.CreateReviewRequest{Rating: 5, Comment: &comment})
	require.NoError(t, err)
	require.NotNil(t, rv.User)
	assert.Equal(t, "alice", rv.User.Username)

	_, err = env.reviews.Create(ctx, alice.ID, p.ID, transport.CreateReviewRequest{Rating: 1})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, "You have already reviewed this product", Message(err))

	_, err = env.reviews.Create(ctx, bob.ID, p.ID, transport.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	got, err := env.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
	assert.InDelta(t, 3.5, got.Rating, 1e-9)

	list, err := env.reviews.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].User.FirstName)
	assert.Equal(t, bob.ID, list[1].User.ID)
}

func TestReview_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "carol", "")
	p := env.product(t, "Umbrella", 600, 3)

	_, err := env.reviews.Create(ctx, u.ID, 999, transport.CreateReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.reviews.Create(ctx, u.ID, p.ID, transport.CreateReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.NumReviews)
}
