package model

import (
	"strconv"
	"strings"
)

// Anime is one catalog entry as shown in a carousel
type Anime struct {
	ID       int    `json:"mal_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Suggestion is one autocomplete hit for the search box
type Suggestion struct {
	ID       int    `json:"mal_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"mal_id"`
	Name string `json:"name"`
}

// AnimeDetails is the full record behind the detail view
type AnimeDetails struct {
	ID              int         `json:"mal_id"`
	Title           string      `json:"title"`
	TitleJapanese   string      `json:"title_japanese,omitempty"`
	Synopsis        string      `json:"synopsis,omitempty"`
	Episodes        int         `json:"episodes,omitempty"`
	Status          string      `json:"status,omitempty"`
	Rank            int         `json:"rank,omitempty"`
	Score           float64     `json:"score,omitempty"`
	Season          string      `json:"season,omitempty"`
	Year            int         `json:"year,omitempty"`
	ImageURL        string      `json:"image_url,omitempty"`
	TrailerEmbedURL string      `json:"trailer_embed_url,omitempty"`
	Genres          []string    `json:"genres,omitempty"`
	Studios         []string    `json:"studios,omitempty"`
	Streaming       []Streaming `json:"streaming,omitempty"`
	Characters      []Character `json:"characters,omitempty"`
}

// Streaming is a service carrying the anime
type Streaming struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Person is a short reference to a character or voice actor
type Person struct {
	ID       int    `json:"mal_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Character is a cast member and their voice actors
type Character struct {
	ID          int      `json:"mal_id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url,omitempty"`
	VoiceActors []Person `json:"voice_actors,omitempty"`
}

// VoiceActor is a voice actor profile
type VoiceActor struct {
	ID       int    `json:"mal_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	About    string `json:"about,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

// CharacterDetails is the full record of one character
type CharacterDetails struct {
	ID          int          `json:"mal_id"`
	Name        string       `json:"name"`
	ImageURL    string       `json:"image_url,omitempty"`
	About       string       `json:"about,omitempty"`
	Favorites   int          `json:"favorites,omitempty"`
	Pictures    []string     `json:"pictures,omitempty"`
	VoiceActors []VoiceActor `json:"voice_actors,omitempty"`
}

// VoiceActorDetails is a voice actor and the characters they voiced
type VoiceActorDetails struct {
	VoiceActor
	Characters []Person `json:"characters,omitempty"`
}

// RatedAnime is an entry of the user's own list
type RatedAnime struct {
	Anime
	Rating int `json:"rating"`
}

// Aired returns "Season Year" or whichever half is known
func (d *AnimeDetails) Aired() string {
	var parts []string
	if d.Season != "" {
		parts = append(parts, strings.ToUpper(d.Season[:1])+d.Season[1:])
	}
	if d.Year > 0 {
		parts = append(parts, strconv.Itoa(d.Year))
	}
	return strings.Join(parts, " ")
}

// Rating is a user's score for one anime
type Rating struct {
	UserID  UserID `json:"user_id"`
	AnimeID int    `json:"anime_id"`
	Rating  int    `json:"rating"`
}

// Rating bounds accepted by the catalog
const (
	MinRating = 1
	MaxRating = 10
)

// ValidRating reports whether r is within [MinRating, MaxRating]
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
