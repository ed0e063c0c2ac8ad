package performance

import (
	"context"
	"time"
)

// Service wraps the store with rating math and ownership rules.
type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, reviewID string) (Review, error) {
	return s.Store.Get(ctx, reviewID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Review, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func (s *Service) Create(ctx context.Context, rev Review) (Review, error) {
	if err := ValidateRatings(rev.Ratings); err != nil {
		return Review{}, err
	}
	rev.OverallRating = OverallRating(rev.Ratings)
	if rev.Status == "" {
		rev.Status = StatusSubmitted
	}
	if rev.Goals == nil {
		rev.Goals = []Goal{}
	}
	return s.Store.Create(ctx, rev)
}

// Update recomputes the overall rating. Only the original reviewer or an
// admin may change a review.
func (s *Service) Update(ctx context.Context, reviewID string, rev Review, actorUserID string, isAdmin bool) (Review, error) {
	existing, err := s.Store.Get(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !isAdmin && existing.ReviewerID != actorUserID {
		return Review{}, ErrNotReviewer
	}
	if err := ValidateRatings(rev.Ratings); err != nil {
		return Review{}, err
	}
	rev.OverallRating = OverallRating(rev.Ratings)
	if rev.Status == "" {
		rev.Status = existing.Status
	}
	if rev.Goals == nil {
		rev.Goals = existing.Goals
	}
	if err := s.Store.Update(ctx, reviewID, rev); err != nil {
		return Review{}, err
	}
	return s.Store.Get(ctx, reviewID)
}

func (s *Service) Delete(ctx context.Context, reviewID, actorUserID string, isAdmin bool) error {
	existing, err := s.Store.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && existing.ReviewerID != actorUserID {
		return ErrNotReviewer
	}
	return s.Store.Delete(ctx, reviewID)
}

// Acknowledge records that the reviewed employee has seen the review.
// Only the user account linked to that employee may acknowledge, and only once.
func (s *Service) Acknowledge(ctx context.Context, reviewID, actorUserID, comments string) (Review, error) {
	ownerUserID, err := s.Store.EmployeeUserID(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if ownerUserID == "" || ownerUserID != actorUserID {
		return Review{}, ErrNotReviewedEmployee
	}
	if err := s.Store.Acknowledge(ctx, reviewID, comments, time.Now().UTC()); err != nil {
		return Review{}, err
	}
	return s.Store.Get(ctx, reviewID)
}

// StatsWindow defaults to the current calendar month when no window is given.
func (s *Service) StatsWindow(ctx context.Context, from, to time.Time) (Stats, error) {
	if from.IsZero() || to.IsZero() {
		now := time.Now().UTC()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = first
		to = first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
	return s.Store.Stats(ctx, from, to)
}
