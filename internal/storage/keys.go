package storage

// Keys are the on-disk contract for restored state and must stay stable
// across releases. Each engine owns one namespace.
const (
	carouselPrefix = "carousel_pos_"

	KeyTopAnimesLimit     = "topAnimesLimit"
	KeyGenreAnimesLimit   = "genreAnimesLimit"
	KeySearchResultsLimit = "searchResultsLimit"
	KeySelectedGenre      = "selectedGenre"
	KeyAnimeSearch        = "animeSearch"

	KeyIsLoggedIn = "isLoggedIn"
	KeyUserID     = "userId"
	KeyLoginTime  = "loginTime"
)

// CarouselKey returns the storage key for a carousel's scroll offset
func CarouselKey(name string) string {
	return carouselPrefix + name
}
