package performance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	reviews map[string]Review
	// employee id -> linked user id
	employeeUsers map[string]string
	nextID        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{reviews: map[string]Review{}, employeeUsers: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, reviewID string) (Review, error) {
	rev, ok := f.reviews[reviewID]
	if !ok {
		return Review{}, ErrNotFound
	}
	return rev, nil
}

func (f *fakeStore) EmployeeUserID(_ context.Context, reviewID string) (string, error) {
	rev, ok := f.reviews[reviewID]
	if !ok {
		return "", ErrNotFound
	}
	return f.employeeUsers[rev.EmployeeID], nil
}

func (f *fakeStore) List(_ context.Context, _ Filter, _, _ int) ([]Review, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(_ context.Context, rev Review) (Review, error) {
	f.nextID++
	rev.ID = fmt.Sprintf("rev-%d", f.nextID)
	f.reviews[rev.ID] = rev
	return rev, nil
}

func (f *fakeStore) Update(_ context.Context, reviewID string, rev Review) error {
	existing, ok := f.reviews[reviewID]
	if !ok {
		return ErrNotFound
	}
	rev.ID = existing.ID
	rev.EmployeeID = existing.EmployeeID
	rev.ReviewerID = existing.ReviewerID
	rev.Acknowledged = existing.Acknowledged
	f.reviews[reviewID] = rev
	return nil
}

func (f *fakeStore) Delete(_ context.Context, reviewID string) error {
	if _, ok := f.reviews[reviewID]; !ok {
		return ErrNotFound
	}
	delete(f.reviews, reviewID)
	return nil
}

func (f *fakeStore) Acknowledge(_ context.Context, reviewID, comments string, at time.Time) error {
	rev, ok := f.reviews[reviewID]
	if !ok {
		return ErrNotFound
	}
	if rev.Acknowledged {
		return ErrAlreadyAcknowledged
	}
	rev.Acknowledged = true
	rev.AcknowledgedAt = &at
	rev.Comments = comments
	rev.Status = StatusAcknowledged
	f.reviews[reviewID] = rev
	return nil
}

func (f *fakeStore) Stats(_ context.Context, from, to time.Time) (Stats, error) {
	return Stats{From: from, To: to}, nil
}

func validRatings() Ratings {
	return Ratings{Productivity: 5, Quality: 4, JobKnowledge: 5, Communication: 4, Teamwork: 5, Initiative: 4}
}

func seedReview(store *fakeStore) Review {
	store.employeeUsers["emp-1"] = "user-emp"
	rev, _ := store.Create(context.Background(), Review{
		EmployeeID: "emp-1",
		ReviewerID: "user-reviewer",
		Ratings:    validRatings(),
		Status:     StatusSubmitted,
	})
	return rev
}

func TestCreateComputesOverall(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rev, err := svc.Create(context.Background(), Review{
		EmployeeID: "emp-1",
		ReviewerID: "user-reviewer",
		Ratings:    validRatings(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rev.OverallRating != 4.5 {
		t.Fatalf("overall = %v, want 4.5", rev.OverallRating)
	}
	if rev.Status != StatusSubmitted {
		t.Fatalf("status = %q, want %q", rev.Status, StatusSubmitted)
	}
}

func TestCreateRejectsOutOfRangeRatings(t *testing.T) {
	svc := NewService(newFakeStore())

	bad := validRatings()
	bad.Teamwork = 6
	_, err := svc.Create(context.Background(), Review{EmployeeID: "emp-1", Ratings: bad})
	if !errors.Is(err, ErrRatingOutOfRange) {
		t.Fatalf("err = %v, want ErrRatingOutOfRange", err)
	}
}

func TestUpdateRequiresReviewerOrAdmin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	rev := seedReview(store)

	_, err := svc.Update(context.Background(), rev.ID, rev, "user-other", false)
	if !errors.Is(err, ErrNotReviewer) {
		t.Fatalf("err = %v, want ErrNotReviewer", err)
	}

	updated := rev
	updated.Ratings.Quality = 5
	if _, err := svc.Update(context.Background(), rev.ID, updated, "user-reviewer", false); err != nil {
		t.Fatalf("reviewer update: %v", err)
	}
	if _, err := svc.Update(context.Background(), rev.ID, updated, "user-other", true); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteRequiresReviewerOrAdmin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	rev := seedReview(store)

	if err := svc.Delete(context.Background(), rev.ID, "user-other", false); !errors.Is(err, ErrNotReviewer) {
		t.Fatalf("err = %v, want ErrNotReviewer", err)
	}
	if err := svc.Delete(context.Background(), rev.ID, "user-reviewer", false); err != nil {
		t.Fatalf("reviewer delete: %v", err)
	}
}

func TestAcknowledgeOnlyByReviewedEmployee(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	rev := seedReview(store)

	_, err := svc.Acknowledge(context.Background(), rev.ID, "user-reviewer", "thanks")
	if !errors.Is(err, ErrNotReviewedEmployee) {
		t.Fatalf("err = %v, want ErrNotReviewedEmployee", err)
	}

	acked, err := svc.Acknowledge(context.Background(), rev.ID, "user-emp", "thanks")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !acked.Acknowledged || acked.Status != StatusAcknowledged {
		t.Fatalf("review not acknowledged: %+v", acked)
	}

	_, err = svc.Acknowledge(context.Background(), rev.ID, "user-emp", "again")
	if !errors.Is(err, ErrAlreadyAcknowledged) {
		t.Fatalf("err = %v, want ErrAlreadyAcknowledged", err)
	}
}

func TestAcknowledgeWithoutLinkedUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	rev := seedReview(store)
	store.employeeUsers["emp-1"] = ""

	_, err := svc.Acknowledge(context.Background(), rev.ID, "user-emp", "")
	if !errors.Is(err, ErrNotReviewedEmployee) {
		t.Fatalf("err = %v, want ErrNotReviewedEmployee", err)
	}
}

func TestStatsWindowDefaultsToCurrentMonth(t *testing.T) {
	svc := NewService(newFakeStore())

	stats, err := svc.StatsWindow(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("StatsWindow: %v", err)
	}
	now := time.Now().UTC()
	if stats.From.Month() != now.Month() || stats.From.Day() != 1 {
		t.Fatalf("from = %v, want first of current month", stats.From)
	}
	if !stats.To.After(stats.From) {
		t.Fatalf("to %v not after from %v", stats.To, stats.From)
	}
}
