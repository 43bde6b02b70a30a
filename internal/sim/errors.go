package sim

import "errors"

// Domain errors are split the way the command surface reports them: validation
// errors are caller mistakes and never mutate state, not-found errors are bad
// references. Anything else escaping the sim package is an internal defect.
var (
	ErrSongNotFound       = errors.New("song not found")
	ErrReleaseNotFound    = errors.New("release not found")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrEmailNotFound      = errors.New("email not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrTourNotFound       = errors.New("tour not found")

	ErrBudgetExceeded     = errors.New("promo budget exceeded")
	ErrActionDone         = errors.New("promotional action already completed")
	ErrInvalidDate        = errors.New("scheduled week must be within 1..52")
	ErrDateNotFuture      = errors.New("scheduled date must be strictly in the future")
	ErrDateClash          = errors.New("two releases for the same submission share a date")
	ErrSingleAfterProject = errors.New("single date must be strictly before the project date")
	ErrAlreadyReleased    = errors.New("entity is already released")
	ErrEmptyAnswer        = errors.New("answer text must not be empty")
	ErrWrongOfferKind     = errors.New("action does not apply to this offer kind")
	ErrNotSubmittable     = errors.New("nothing eligible to submit this award year")
	ErrAlreadySubmitted   = errors.New("already submitted for this award year")
	ErrCategoryIneligible = errors.New("category not eligible for this submission")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidGenre       = errors.New("unknown genre")
	ErrEmptyTracklist     = errors.New("release needs at least one song")
	ErrSongTaken          = errors.New("song already belongs to another release")
	ErrTourNotPlanning    = errors.New("tour is not in planning")
	ErrInvalidWeeks       = errors.New("weeks must be between 1 and 260")
)

// IsValidation reports whether err is a recoverable caller error (bad input,
// over-budget, wrong-state action) as opposed to a missing reference.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrBudgetExceeded),
		errors.Is(err, ErrActionDone),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrDateNotFuture),
		errors.Is(err, ErrDateClash),
		errors.Is(err, ErrSingleAfterProject),
		errors.Is(err, ErrAlreadyReleased),
		errors.Is(err, ErrEmptyAnswer),
		errors.Is(err, ErrWrongOfferKind),
		errors.Is(err, ErrNotSubmittable),
		errors.Is(err, ErrAlreadySubmitted),
		errors.Is(err, ErrCategoryIneligible),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidGenre),
		errors.Is(err, ErrEmptyTracklist),
		errors.Is(err, ErrSongTaken),
		errors.Is(err, ErrTourNotPlanning),
		errors.Is(err, ErrInvalidWeeks):
		return true
	}
	return false
}

// IsNotFound reports whether err refers to an unknown entity id.
func IsNotFound(err error) bool {
	switch {
	case errors.Is(err, ErrSongNotFound),
		errors.Is(err, ErrReleaseNotFound),
		errors.Is(err, ErrOfferNotFound),
		errors.Is(err, ErrEmailNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrTourNotFound):
		return true
	}
	return false
}
