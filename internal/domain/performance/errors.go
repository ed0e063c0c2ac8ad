package performance

import "errors"

var (
	ErrNotFound            = errors.New("performance review not found")
	ErrNotReviewer         = errors.New("only the reviewer or an admin may modify this review")
	ErrNotReviewedEmployee = errors.New("only the reviewed employee may acknowledge")
	ErrAlreadyAcknowledged = errors.New("review already acknowledged")
	ErrRatingOutOfRange    = errors.New("ratings must be between 1 and 5")
)
