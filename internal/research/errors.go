package research

import (
	"errors"

	"github.com/kennyg/lore/internal/store"
)

var (
	// ErrInvalidTopic is returned when a topic normalizes to an empty slug
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNotFound is returned when Promote or Refresh has nothing to work from
	ErrNotFound = store.ErrNotFound

	// ErrResearchTimeout is returned when the researcher exceeds its time bound
	ErrResearchTimeout = errors.New("research timed out")

	// ErrResearchFailed wraps an error reported by the researcher
	ErrResearchFailed = errors.New("research failed")
)
