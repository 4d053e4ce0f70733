// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

func (s *Server) handleGenres(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Genres())
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := ListQuery{
		Query:   values.Get("q"),
		SortBy:  "title",
		Page:    1,
		PerPage: defaultPerPage,
	}
	var issues []validationIssue

	intParam := func(name string, min, max int, dst *int) {
		raw := values.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, issue("query", name, "Input should be a valid integer"))
			return
		}
		if n < min || n > max {
			issues = append(issues, issue("query", name, "Input should be between %d and %d", min, max))
			return
		}
		*dst = n
	}
	intParam("genre_id", 1, 1<<31-1, &q.GenreID)
	intParam("year_min", 1800, 2100, &q.YearMin)
	intParam("year_max", 1800, 2100, &q.YearMax)
	intParam("page", 1, 100000, &q.Page)
	intParam("per_page", 1, maxPerPage, &q.PerPage)

	if raw := values.Get("sort_by"); raw != "" {
		switch raw {
		case "title", "year", "rating":
			q.SortBy = raw
		default:
			issues = append(issues, issue("query", "sort_by", "Input should be 'title', 'year' or 'rating'"))
		}
	}
	switch values.Get("order") {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		issues = append(issues, issue("query", "order", "Input should be 'asc' or 'desc'"))
	}

	if len(issues) > 0 {
		writeValidation(w, issues)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.List(q))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeValidation(w, []validationIssue{issue("path", "movie_id", "Input should be a valid integer")})
		return
	}
	movie, ok := s.catalog.Movie(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req moviesapi.Registration
	if !decodeBody(w, r, &req) {
		return
	}
	if issues := validateCredentials(req.Username, req.Password); len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	user, err := s.users.create(req.Username, req.Password, strings.TrimSpace(req.DisplayName))
	if errors.Is(err, errUsernameTaken) {
		writeDetail(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("register failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeAuth(w, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req moviesapi.Credentials
	if !decodeBody(w, r, &req) {
		return
	}
	if issues := validateCredentials(req.Username, req.Password); len(issues) > 0 {
		writeValidation(w, issues)
		return
	}

	user, ok := s.users.authenticate(req.Username, req.Password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	// Login responses carry no created_at.
	user.CreatedAt = ""
	s.writeAuth(w, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	userID, err := s.tokens.verify(raw)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	user, ok := s.users.byID(userID)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) writeAuth(w http.ResponseWriter, user moviesapi.User) {
	token, err := s.tokens.issue(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("sign token failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, moviesapi.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		writeValidation(w, []validationIssue{issue("body", "", "JSON decode error")})
		return false
	}
	return true
}

func validateCredentials(username, password string) []validationIssue {
	var issues []validationIssue
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		issues = append(issues, issue("body", "username", "String should have between 3 and 50 characters"))
	}
	if n := utf8.RuneCountInString(password); n < 8 || n > 128 {
		issues = append(issues, issue("body", "password", "String should have between 8 and 128 characters"))
	}
	return issues
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
