package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/middleware/auth"
	"github.com/Skotchmaster/markethub/internal/service"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.list")

	productID, err := pathID(c, l, "list_reviews_error", "id")
	if err != nil {
		return err
	}
	reviews, err := h.Svc.List(ctx, productID)
	if err != nil {
		return fromService(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.create")

	productID, err := pathID(c, l, "create_review_error", "id")
	if err != nil {
		return err
	}
	var req transport.CreateReviewRequest
	if err := bindValid(c, l, "create_review_error", &req); err != nil {
		return err
	}

	uid, _ := auth.UserID(c)
	review, err := h.Svc.Create(ctx, uid, productID, req)
	if err != nil {
		return fromService(l, "create_review_error", err)
	}

	l.Info("review_created", "review_id", review.ID, "product_id", productID, "user_id", uid)
	return c.JSON(http.StatusCreated, review)
}
