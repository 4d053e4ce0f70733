// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package moviesapi

// Genre is one entry of GET /genres.
type Genre struct {
	ID   int    `json:"genre_id"`
	Name string `json:"name"`
}

// MovieSummary is one row of the movie list.
type MovieSummary struct {
	ID             int      `json:"movie_id"`
	Title          string   `json:"title"`
	ReleaseYear    *int     `json:"release_year,omitempty"`
	RuntimeMinutes *int     `json:"runtime_minutes,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	PosterPath     string   `json:"poster_path,omitempty"`
	AvgRating      *float64 `json:"avg_rating,omitempty"`
	RatingCount    int      `json:"rating_count,omitempty"`
	IMDbRating     *float64 `json:"imdb_rating,omitempty"`
	// Genres is a display string such as "Action, Drama".
	Genres string `json:"genres,omitempty"`
}

// MoviePage is the GET /movies payload including pagination metadata.
type MoviePage struct {
	Movies     []MovieSummary `json:"movies"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

// CastMember is keyed by person id and character.
type CastMember struct {
	PersonID    int    `json:"person_id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember is keyed by person id and job.
type CrewMember struct {
	PersonID   int    `json:"person_id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department,omitempty"`
}

// Tag is a user tag with the number of times it was applied.
type Tag struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MovieDetail is the GET /movies/{id} payload. A nil sub-collection means
// the server did not include it.
type MovieDetail struct {
	ID                  int      `json:"movie_id"`
	Title               string   `json:"title"`
	ReleaseYear         *int     `json:"release_year,omitempty"`
	RuntimeMinutes      *int     `json:"runtime_minutes,omitempty"`
	Overview            string   `json:"overview,omitempty"`
	PosterPath          string   `json:"poster_path,omitempty"`
	BackdropPath        string   `json:"backdrop_path,omitempty"`
	Budget              *Amount  `json:"budget,omitempty"`
	Revenue             *Amount  `json:"revenue,omitempty"`
	BoxOffice           *Amount  `json:"box_office,omitempty"`
	AvgRating           *float64 `json:"avg_rating,omitempty"`
	RatingCount         int      `json:"rating_count,omitempty"`
	IMDbRating          *float64 `json:"imdb_rating,omitempty"`
	RottenTomatoesScore *int     `json:"rotten_tomatoes_score,omitempty"`

	Genres []Genre      `json:"genres,omitempty"`
	Cast   []CastMember `json:"cast,omitempty"`
	Crew   []CrewMember `json:"crew,omitempty"`
	Tags   []Tag        `json:"tags,omitempty"`
}

// User is the account record returned by the auth endpoints.
type User struct {
	ID          int    `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// ListParams are the query parameters of GET /movies.
type ListParams struct {
	Query   string
	GenreID *int
	YearMin *int
	YearMax *int
	SortBy  string
	Order   string
	Page    int
	PerPage int
}
