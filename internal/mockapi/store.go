package mockapi

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/existflow/animeshelf/internal/model"
)

var (
	errUserExists   = errors.New("user already registered")
	errInvalidLogin = errors.New("invalid username or password")
)

type account struct {
	id       int
	password string
}

// store is the in-memory catalog plus the accounts and ratings created
// while the server runs
type store struct {
	mu      sync.RWMutex
	animes  []record
	byID    map[int]record
	users   map[string]account
	nextID  int
	ratings map[int]map[int]int // user id -> anime id -> rating

	characters  map[int]model.CharacterDetails
	voiceActors map[int]model.VoiceActorDetails
}

func newStore(recs []record) *store {
	s := &store{
		animes:  recs,
		byID:    make(map[int]record, len(recs)),
		users:   make(map[string]account),
		nextID:  1,
		ratings: make(map[int]map[int]int),

		characters:  make(map[int]model.CharacterDetails),
		voiceActors: make(map[int]model.VoiceActorDetails),
	}
	for _, r := range recs {
		s.byID[r.details.ID] = r
	}
	s.indexPeople()
	return s
}

// indexPeople builds the character and voice actor records from the casts
// of the fixture animes
func (s *store) indexPeople() {
	for _, r := range s.animes {
		for _, c := range r.details.Characters {
			if _, ok := s.characters[c.ID]; ok {
				continue
			}
			p := characterProfiles[c.ID]
			cd := model.CharacterDetails{
				ID:        c.ID,
				Name:      c.Name,
				ImageURL:  c.ImageURL,
				About:     p.about,
				Favorites: p.favorites,
			}
			if c.ImageURL != "" {
				cd.Pictures = []string{c.ImageURL}
			}

			for _, va := range c.VoiceActors {
				v, ok := s.voiceActors[va.ID]
				if !ok {
					v.VoiceActor = model.VoiceActor{
						ID:       va.ID,
						Name:     va.Name,
						ImageURL: va.ImageURL,
						Birthday: voiceActorBirthdays[va.ID],
					}
				}
				v.Characters = append(v.Characters, model.Person{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL})
				s.voiceActors[va.ID] = v
				cd.VoiceActors = append(cd.VoiceActors, v.VoiceActor)
			}
			s.characters[c.ID] = cd
		}
	}
}

func (s *store) character(id int) (model.CharacterDetails, bool) {
	c, ok := s.characters[id]
	return c, ok
}

func (s *store) voiceActor(id int) (model.VoiceActorDetails, bool) {
	v, ok := s.voiceActors[id]
	return v, ok
}

// sorted returns animes matching keep, ordered by less, cut to limit
func (s *store) sorted(keep func(record) bool, less func(a, b record) bool, limit int) []model.Anime {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]record, 0, len(s.animes))
	for _, r := range s.animes {
		if keep == nil || keep(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]model.Anime, 0, len(matched))
	for _, r := range matched {
		out = append(out, r.anime())
	}
	return out
}

func byScore(a, b record) bool { return a.details.Score > b.details.Score }
func byMembers(a, b record) bool { return a.members > b.members }

func (s *store) top(limit int) []model.Anime {
	return s.sorted(nil, byScore, limit)
}

func (s *store) popular(limit int) []model.Anime {
	return s.sorted(nil, byMembers, limit)
}

func (s *store) search(q string, limit int) []model.Anime {
	q = strings.ToLower(q)
	return s.sorted(func(r record) bool {
		return strings.Contains(strings.ToLower(r.details.Title), q)
	}, byScore, limit)
}

// autocomplete ranks titles that start with q ahead of titles that contain it
func (s *store) autocomplete(q string, limit int) []model.Suggestion {
	q = strings.ToLower(q)
	prefix := func(r record) bool { return strings.HasPrefix(strings.ToLower(r.details.Title), q) }

	hits := s.sorted(func(r record) bool {
		return strings.Contains(strings.ToLower(r.details.Title), q)
	}, func(a, b record) bool {
		pa, pb := prefix(a), prefix(b)
		if pa != pb {
			return pa
		}
		return a.members > b.members
	}, limit)

	out := make([]model.Suggestion, 0, len(hits))
	for _, a := range hits {
		out = append(out, model.Suggestion{ID: a.ID, Title: a.Title, ImageURL: a.ImageURL})
	}
	return out
}

func (s *store) byGenre(name string, limit int) []model.Anime {
	return s.sorted(func(r record) bool {
		for _, g := range r.details.Genres {
			if strings.EqualFold(g, name) {
				return true
			}
		}
		return false
	}, byScore, limit)
}

func (s *store) genres() []model.Genre {
	out := make([]model.Genre, 0, len(genreIDs))
	for name, id := range genreIDs {
		out = append(out, model.Genre{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *store) details(id int) (model.AnimeDetails, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return model.AnimeDetails{}, false
	}
	d := r.details
	s.rankLocked(&d)
	return d, true
}

// rankLocked fills the score rank the way the catalog reports it
func (s *store) rankLocked(d *model.AnimeDetails) {
	rank := 1
	for _, r := range s.animes {
		if r.details.Score > d.Score {
			rank++
		}
	}
	d.Rank = rank
}

func (s *store) register(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return errUserExists
	}
	s.users[username] = account{id: s.nextID, password: password}
	s.nextID++
	return nil
}

func (s *store) login(username, password string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.users[username]
	if !ok || acc.password != password {
		return 0, errInvalidLogin
	}
	return acc.id, nil
}

func (s *store) rate(userID, animeID, rating int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[animeID]; !ok {
		return false
	}
	if s.ratings[userID] == nil {
		s.ratings[userID] = make(map[int]int)
	}
	s.ratings[userID][animeID] = rating
	return true
}

func (s *store) rated(userID int) []model.RatedAnime {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RatedAnime, 0, len(s.ratings[userID]))
	for animeID, rating := range s.ratings[userID] {
		out = append(out, model.RatedAnime{Anime: s.byID[animeID].anime(), Rating: rating})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// recommend suggests the best scored animes sharing a genre with the user's
// favourites, skipping what the user already rated. Users without ratings
// get the top list.
func (s *store) recommend(userID, limit int) []model.Anime {
	s.mu.RLock()
	rated := make(map[int]int, len(s.ratings[userID]))
	for id, r := range s.ratings[userID] {
		rated[id] = r
	}
	liked := make(map[string]bool)
	for id, r := range rated {
		if r >= 7 {
			for _, g := range s.byID[id].details.Genres {
				liked[g] = true
			}
		}
	}
	s.mu.RUnlock()

	if len(rated) == 0 {
		return s.top(limit)
	}
	return s.sorted(func(r record) bool {
		if _, seen := rated[r.details.ID]; seen {
			return false
		}
		if len(liked) == 0 {
			return true
		}
		for _, g := range r.details.Genres {
			if liked[g] {
				return true
			}
		}
		return false
	}, byScore, limit)
}

func parseUserID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	return id, err == nil && id > 0
}
