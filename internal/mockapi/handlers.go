package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
)

const (
	defaultListLimit   = 20
	defaultSearchLimit = 25
	autocompleteLimit  = 8
	maxLimit           = 1000
)

type ratingRequest struct {
	UserID  int `json:"user_id"`
	AnimeID int `json:"anime_id"`
	Rating  int `json:"rating"`
}

// limitParam reads ?limit=, falling back to def when absent
func limitParam(c echo.Context, def int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "limit must be between 1 and 1000")
	}
	return n, nil
}

func (s *Server) handleAutocomplete(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, []model.Suggestion{})
	}
	return c.JSON(http.StatusOK, s.store.autocomplete(q, autocompleteLimit))
}

func (s *Server) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "q is required")
	}
	limit, err := limitParam(c, defaultSearchLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.store.search(q, limit))
}

func (s *Server) handleTop(c echo.Context) error {
	limit, err := limitParam(c, defaultListLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.store.top(limit))
}

func (s *Server) handlePopular(c echo.Context) error {
	limit, err := limitParam(c, defaultListLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.store.popular(limit))
}

func (s *Server) handleGenres(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.genres())
}

func (s *Server) handleGenre(c echo.Context) error {
	limit, err := limitParam(c, defaultListLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.store.byGenre(c.Param("name"), limit))
}

func (s *Server) handleAnime(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be an integer")
	}
	d, ok := s.store.details(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "anime not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleCharacter(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be an integer")
	}
	d, ok := s.store.character(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "character not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleVoiceActor(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be an integer")
	}
	d, ok := s.store.voiceActor(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "voice actor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleRegister(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	if err := s.store.register(req.Username, req.Password); err != nil {
		if errors.Is(err, errUserExists) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	s.log.Info("User registered", logger.F("username", req.Username))
	return c.JSON(http.StatusCreated, model.Message{Message: "user registered"})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	id, err := s.store.login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	s.log.Info("User logged in", logger.F("username", req.Username))
	return c.JSON(http.StatusOK, map[string]any{
		"message": "login successful",
		"user_id": id,
	})
}

func (s *Server) handleRate(c echo.Context) error {
	var req ratingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "user_id, anime_id and rating must be integers")
	}
	if req.UserID <= 0 || !model.ValidRating(req.Rating) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "rating must be between 1 and 10")
	}
	if !s.store.rate(req.UserID, req.AnimeID, req.Rating) {
		return echo.NewHTTPError(http.StatusNotFound, "anime not found")
	}
	return c.JSON(http.StatusCreated, model.Message{Message: "rating saved"})
}

func (s *Server) handleRecommendations(c echo.Context) error {
	id, ok := parseUserID(c.Param("user_id"))
	if !ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "user_id must be an integer")
	}
	return c.JSON(http.StatusOK, s.store.recommend(id, defaultListLimit))
}

func (s *Server) handleMyAnimes(c echo.Context) error {
	id, ok := parseUserID(c.Param("user_id"))
	if !ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "user_id must be an integer")
	}
	return c.JSON(http.StatusOK, s.store.rated(id))
}
