package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type ReviewService struct {
	Store repo.Store
}

func NewReviewService(store repo.Store) *ReviewService {
	return &ReviewService{Store: store}
}

func (s *ReviewService) List(ctx context.Context, productID uint) ([]models.Review, error) {
	reviews, err := s.Store.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	authors := map[uint]*models.ReviewAuthor{}
	for i := range reviews {
		uid := reviews[i].UserID
		a, seen := authors[uid]
		if !seen {
			a, err = author(ctx, s.Store, uid)
			if err != nil {
				return nil, err
			}
			authors[uid] = a
		}
		reviews[i].User = a
	}
	return reviews, nil
}

// Create stores the user's only review of the product and recomputes the
// product's rating and review count in the same transaction.
func (s *ReviewService) Create(ctx context.Context, userID, productID uint, req transport.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fail(ErrValidation, "Invalid data")
	}

	var out *models.Review
	err := s.Store.Transaction(ctx, func(tx repo.Store) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fail(ErrNotFound, "Product not found")
			}
			return err
		}

		reviewed, err := tx.HasReviewed(ctx, userID, productID)
		if err != nil {
			return err
		}
		if reviewed {
			return fail(ErrAlreadyReviewed, "You have already reviewed this product")
		}

		rv := &models.Review{UserID: userID, ProductID: productID, Rating: req.Rating, Comment: req.Comment}
		if err := tx.CreateReview(ctx, rv); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return fail(ErrAlreadyReviewed, "You have already reviewed this product")
			}
			return err
		}

		avg, count, err := tx.ReviewStats(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.UpdateProductRating(ctx, productID, avg, int(count)); err != nil {
			return err
		}

		rv.User, err = author(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// author returns nil for a user that no longer exists.
func author(ctx context.Context, users repo.UserRepo, id uint) (*models.ReviewAuthor, error) {
	u, err := users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.ReviewAuthor{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}, nil
}
