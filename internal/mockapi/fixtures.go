package mockapi

import (
	"strconv"

	"github.com/existflow/animeshelf/internal/model"
)

// record is one fixture anime with the columns the handlers sort and filter on
type record struct {
	details model.AnimeDetails
	members int
}

func (r record) anime() model.Anime {
	return model.Anime{ID: r.details.ID, Title: r.details.Title, ImageURL: r.details.ImageURL}
}

func entry(id int, title string, score float64, members int, year int, season string, episodes int, genres []string, studios []string) record {
	return record{
		details: model.AnimeDetails{
			ID:       id,
			Title:    title,
			Score:    score,
			Year:     year,
			Season:   season,
			Episodes: episodes,
			Status:   "Finished Airing",
			ImageURL: "https://cdn.myanimelist.net/images/anime/" + strconv.Itoa(id) + ".jpg",
			Genres:   genres,
			Studios:  studios,
			Synopsis: title + " fixture synopsis.",
		},
		members: members,
	}
}

// defaultFixtures is a small catalog that covers every list on the home screen
func defaultFixtures() []record {
	recs := []record{
		entry(5114, "Fullmetal Alchemist: Brotherhood", 9.1, 3400000, 2009, "spring", 64, []string{"Action", "Adventure", "Drama", "Fantasy"}, []string{"Bones"}),
		entry(9253, "Steins;Gate", 9.07, 2600000, 2011, "spring", 24, []string{"Drama", "Sci-Fi", "Suspense"}, []string{"White Fox"}),
		entry(28977, "Gintama°", 9.06, 640000, 2015, "spring", 51, []string{"Action", "Comedy", "Sci-Fi"}, []string{"Bandai Namco Pictures"}),
		entry(38524, "Shingeki no Kyojin Season 3 Part 2", 9.05, 2300000, 2019, "spring", 10, []string{"Action", "Drama", "Suspense"}, []string{"Wit Studio"}),
		entry(820, "Ginga Eiyuu Densetsu", 9.02, 300000, 1988, "winter", 110, []string{"Drama", "Sci-Fi"}, []string{"Kitty Film Mitaka Studio"}),
		entry(11061, "Hunter x Hunter (2011)", 9.04, 2900000, 2011, "fall", 148, []string{"Action", "Adventure", "Fantasy"}, []string{"Madhouse"}),
		entry(32281, "Kimi no Na wa.", 8.84, 2800000, 2016, "summer", 1, []string{"Award Winning", "Drama", "Supernatural"}, []string{"CoMix Wave Films"}),
		entry(1535, "Death Note", 8.62, 4000000, 2006, "fall", 37, []string{"Supernatural", "Suspense"}, []string{"Madhouse"}),
		entry(16498, "Shingeki no Kyojin", 8.54, 4000000, 2013, "spring", 25, []string{"Action", "Drama", "Suspense"}, []string{"Wit Studio"}),
		entry(20, "Naruto", 8.0, 2800000, 2002, "fall", 220, []string{"Action", "Adventure", "Fantasy"}, []string{"Studio Pierrot"}),
		entry(1735, "Naruto: Shippuuden", 8.26, 2500000, 2007, "winter", 500, []string{"Action", "Adventure", "Fantasy"}, []string{"Studio Pierrot"}),
		entry(21, "One Piece", 8.72, 2400000, 1999, "fall", 0, []string{"Action", "Adventure", "Fantasy"}, []string{"Toei Animation"}),
		entry(269, "Bleach", 7.92, 1600000, 2004, "fall", 366, []string{"Action", "Adventure", "Supernatural"}, []string{"Studio Pierrot"}),
		entry(1, "Cowboy Bebop", 8.75, 1900000, 1998, "spring", 26, []string{"Action", "Award Winning", "Sci-Fi"}, []string{"Sunrise"}),
		entry(19, "Monster", 8.88, 1100000, 2004, "spring", 74, []string{"Drama", "Mystery", "Suspense"}, []string{"Madhouse"}),
		entry(30276, "One Punch Man", 8.49, 3200000, 2015, "fall", 12, []string{"Action", "Comedy"}, []string{"Madhouse"}),
		entry(31964, "Boku no Hero Academia", 7.86, 2700000, 2016, "spring", 13, []string{"Action"}, []string{"Bones"}),
		entry(40748, "Jujutsu Kaisen", 8.56, 2100000, 2020, "fall", 24, []string{"Action", "Supernatural"}, []string{"MAPPA"}),
		entry(38000, "Kimetsu no Yaiba", 8.44, 2900000, 2019, "spring", 26, []string{"Action", "Supernatural"}, []string{"ufotable"}),
		entry(199, "Sen to Chihiro no Kamikakushi", 8.77, 1900000, 2001, "summer", 1, []string{"Adventure", "Award Winning", "Supernatural"}, []string{"Studio Ghibli"}),
		entry(2904, "Code Geass: Hangyaku no Lelouch R2", 8.91, 1700000, 2008, "spring", 25, []string{"Action", "Award Winning", "Drama", "Sci-Fi"}, []string{"Sunrise"}),
		entry(37521, "Vinland Saga", 8.75, 1600000, 2019, "summer", 24, []string{"Action", "Adventure", "Drama"}, []string{"Wit Studio"}),
		entry(33352, "Violet Evergarden", 8.68, 1900000, 2018, "winter", 13, []string{"Drama", "Fantasy"}, []string{"Kyoto Animation"}),
		entry(34096, "Gintama.", 8.98, 250000, 2017, "winter", 12, []string{"Action", "Comedy", "Sci-Fi"}, []string{"Bandai Namco Pictures"}),
		entry(21939, "Mushishi Zoku Shou", 8.8, 210000, 2014, "spring", 10, []string{"Adventure", "Mystery", "Slice of Life", "Supernatural"}, []string{"Artland"}),
		entry(4181, "Clannad: After Story", 8.93, 1100000, 2008, "fall", 24, []string{"Drama", "Romance", "Supernatural"}, []string{"Kyoto Animation"}),
		entry(23273, "Shigatsu wa Kimi no Uso", 8.64, 1800000, 2014, "fall", 22, []string{"Drama", "Romance"}, []string{"A-1 Pictures"}),
		entry(918, "Gintama", 8.94, 680000, 2006, "spring", 201, []string{"Action", "Comedy", "Sci-Fi"}, []string{"Sunrise"}),
	}

	recs[0].details.Streaming = []model.Streaming{{Name: "Crunchyroll", URL: "https://www.crunchyroll.com/series/GRGGPG93R"}}
	recs[0].details.Characters = []model.Character{
		{ID: 11, Name: "Elric, Edward", ImageURL: "https://cdn.myanimelist.net/images/characters/9/72533.jpg", VoiceActors: []model.Person{{ID: 81, Name: "Park, Romi"}}},
		{ID: 12, Name: "Elric, Alphonse", ImageURL: "https://cdn.myanimelist.net/images/characters/5/54265.jpg", VoiceActors: []model.Person{{ID: 4, Name: "Kugimiya, Rie"}}},
	}
	recs[0].details.TitleJapanese = "鋼の錬金術師 FULLMETAL ALCHEMIST"
	return recs
}

// characterProfiles holds the character fields anime records do not carry
var characterProfiles = map[int]struct {
	about     string
	favorites int
}{
	11: {"The youngest State Alchemist in history, known as the Fullmetal Alchemist.", 72000},
	12: {"Edward's younger brother, whose soul is bound to a suit of armor.", 28000},
}

// voiceActorBirthdays fills the voice actor profiles
var voiceActorBirthdays = map[int]string{
	4:  "1979-05-30",
	81: "1972-01-21",
}

// genreIDs maps each fixture genre to a stable id
var genreIDs = map[string]int{
	"Action":        1,
	"Adventure":     2,
	"Comedy":        4,
	"Mystery":       7,
	"Drama":         8,
	"Fantasy":       10,
	"Romance":       22,
	"Sci-Fi":        24,
	"Slice of Life": 36,
	"Supernatural":  37,
	"Suspense":      41,
	"Award Winning": 46,
}
