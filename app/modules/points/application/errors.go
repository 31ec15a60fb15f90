package pointsservice

import "errors"

var (
	// ErrInvalidRequest indicates a request failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrResultsChanged indicates an event was already scored from different results.
	ErrResultsChanged = errors.New("event results differ from the run already applied")

	// ErrNoActiveSeason indicates no season is currently active.
	ErrNoActiveSeason = errors.New("no active season")

	// ErrSeasonNotFound indicates the season does not exist.
	ErrSeasonNotFound = errors.New("season not found")

	// ErrMembershipNotFound indicates the membership does not exist.
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrSeasonExists indicates a season with the same slug already exists.
	ErrSeasonExists = errors.New("season already exists")
)

// IsDomainError reports whether err is a business rejection rather than an
// infrastructure failure. Retrying a domain error cannot succeed.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		ErrResultsChanged,
		ErrNoActiveSeason,
		ErrSeasonNotFound,
		ErrMembershipNotFound,
		ErrSeasonExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
