package utils

// Directory listing constants
const (
	// MaxProbability is the upper bound for promotional probability weights
	MaxProbability = 50

	// DefaultPageSize is the default number of agencies per listing page
	DefaultPageSize = 5

	// DefaultGender is the profile gender counted for public listings
	DefaultGender = "female"
)

// Sort keys accepted by the listing search
const (
	SortByName        = "name"
	SortByPopular     = "popular"
	SortByWebVerified = "web_verified"
)
