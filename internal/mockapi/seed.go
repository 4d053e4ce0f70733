// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package mockapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ManuGH/reelscope/internal/moviesapi"
)

var seedGenres = []moviesapi.Genre{
	{ID: 1, Name: "Action"},
	{ID: 2, Name: "Adventure"},
	{ID: 3, Name: "Animation"},
	{ID: 4, Name: "Comedy"},
	{ID: 5, Name: "Crime"},
	{ID: 6, Name: "Drama"},
	{ID: 7, Name: "Sci-Fi"},
	{ID: 8, Name: "Thriller"},
}

type seedMovie struct {
	id       int
	title    string
	year     int
	runtime  int
	rating   float64
	votes    int
	imdb     float64
	rt       int
	budget   int64
	revenue  int64
	director string
	genres   []int
	cast     []string
	tags     map[string]int
	overview string
}

var seedMovies = []seedMovie{
	{603, "The Matrix", 1999, 136, 4.2, 8124, 8.7, 83, 63000000, 463517383, "Lana Wachowski", []int{1, 7}, []string{"Keanu Reeves:Neo", "Laurence Fishburne:Morpheus", "Carrie-Anne Moss:Trinity"}, map[string]int{"cyberpunk": 12, "philosophy": 5, "martial arts": 1}, "A hacker learns that reality is a simulation run by machines."},
	{604, "The Matrix Reloaded", 2003, 138, 3.4, 4011, 7.2, 74, 150000000, 738599701, "Lana Wachowski", []int{1, 7}, []string{"Keanu Reeves:Neo", "Hugo Weaving:Agent Smith"}, map[string]int{"sequel": 3}, "Neo and the rebels race to defend Zion against the machines."},
	{550, "Fight Club", 1999, 139, 4.3, 9012, 8.8, 79, 63000000, 100853753, "David Fincher", []int{6, 8}, []string{"Brad Pitt:Tyler Durden", "Edward Norton:The Narrator"}, map[string]int{"twist ending": 9, "dark comedy": 2}, "An insomniac office worker forms an underground fight club."},
	{13, "Forrest Gump", 1994, 142, 4.1, 10234, 8.8, 71, 55000000, 677945399, "Robert Zemeckis", []int{4, 6}, []string{"Tom Hanks:Forrest Gump", "Robin Wright:Jenny Curran"}, map[string]int{"classic": 7}, "The life of a kind man who witnesses defining moments of history."},
	{680, "Pulp Fiction", 1994, 154, 4.2, 9876, 8.9, 92, 8000000, 213928762, "Quentin Tarantino", []int{5, 8}, []string{"John Travolta:Vincent Vega", "Samuel L. Jackson:Jules Winnfield"}, map[string]int{"nonlinear": 6, "dialogue": 4}, "Interlocking stories of Los Angeles criminals."},
	{155, "The Dark Knight", 2008, 152, 4.3, 8800, 9.0, 94, 185000000, 1004558444, "Christopher Nolan", []int{1, 5, 6}, []string{"Christian Bale:Bruce Wayne", "Heath Ledger:Joker"}, map[string]int{"superhero": 8}, "Batman faces the Joker, a criminal mastermind spreading chaos in Gotham."},
	{27205, "Inception", 2010, 148, 4.1, 7900, 8.8, 87, 160000000, 825532764, "Christopher Nolan", []int{1, 7, 8}, []string{"Leonardo DiCaprio:Cobb", "Joseph Gordon-Levitt:Arthur"}, map[string]int{"dreams": 10, "heist": 3}, "A thief who steals secrets through dreams is offered a final job."},
	{157336, "Interstellar", 2014, 169, 4.1, 6500, 8.7, 73, 165000000, 701729206, "Christopher Nolan", []int{2, 6, 7}, []string{"Matthew McConaughey:Cooper", "Anne Hathaway:Brand"}, map[string]int{"space": 9, "time": 2}, "Explorers travel through a wormhole in search of a new home for humanity."},
	{862, "Toy Story", 1995, 81, 3.9, 7800, 8.3, 100, 30000000, 373554033, "John Lasseter", []int{3, 4}, []string{"Tom Hanks:Woody", "Tim Allen:Buzz Lightyear"}, map[string]int{"pixar": 11}, "A cowboy doll feels threatened by a new spaceman toy."},
	{120, "The Lord of the Rings: The Fellowship of the Ring", 2001, 178, 4.1, 8100, 8.8, 91, 93000000, 871368364, "Peter Jackson", []int{2, 6}, []string{"Elijah Wood:Frodo Baggins", "Ian McKellen:Gandalf"}, map[string]int{"fantasy": 14}, "A hobbit sets out to destroy a powerful ring."},
	{11, "Star Wars", 1977, 121, 4.1, 9100, 8.6, 93, 11000000, 775398007, "George Lucas", []int{1, 2, 7}, []string{"Mark Hamill:Luke Skywalker", "Harrison Ford:Han Solo"}, map[string]int{"space opera": 13}, "A farm boy joins a rebellion against a galactic empire."},
	{78, "Blade Runner", 1982, 117, 4.0, 5100, 8.1, 89, 28000000, 41722424, "Ridley Scott", []int{7, 8}, []string{"Harrison Ford:Rick Deckard", "Rutger Hauer:Roy Batty"}, map[string]int{"cyberpunk": 6, "noir": 3}, "A blade runner hunts rogue replicants in Los Angeles."},
	{348, "Alien", 1979, 117, 4.0, 5600, 8.5, 93, 11000000, 104931801, "Ridley Scott", []int{7, 8}, []string{"Sigourney Weaver:Ripley"}, map[string]int{"horror": 5}, "The crew of a spaceship encounters a deadly creature."},
	{105, "Back to the Future", 1985, 116, 4.0, 7000, 8.5, 96, 19000000, 381109762, "Robert Zemeckis", []int{2, 4, 7}, []string{"Michael J. Fox:Marty McFly", "Christopher Lloyd:Doc Brown"}, map[string]int{"time travel": 8}, "A teenager is sent thirty years into the past in a time machine."},
	{238, "The Godfather", 1972, 175, 4.4, 8300, 9.2, 97, 6000000, 245066411, "Francis Ford Coppola", []int{5, 6}, []string{"Marlon Brando:Vito Corleone", "Al Pacino:Michael Corleone"}, map[string]int{"mafia": 10}, "The aging patriarch of a crime dynasty transfers control to his son."},
	{278, "The Shawshank Redemption", 1994, 142, 4.4, 10500, 9.3, 91, 25000000, 28341469, "Frank Darabont", []int{5, 6}, []string{"Tim Robbins:Andy Dufresne", "Morgan Freeman:Ellis Redding"}, map[string]int{"prison": 6, "hope": 2}, "Two imprisoned men bond over a number of years."},
	{429, "The Good, the Bad and the Ugly", 1966, 161, 4.1, 3800, 8.8, 97, 1200000, 25100000, "Sergio Leone", []int{2}, []string{"Clint Eastwood:Blondie"}, map[string]int{"western": 7}, "Three gunslingers compete to find buried Confederate gold."},
	{769, "GoodFellas", 1990, 145, 4.2, 5900, 8.7, 94, 25000000, 46836394, "Martin Scorsese", []int{5, 6}, []string{"Ray Liotta:Henry Hill", "Robert De Niro:James Conway"}, map[string]int{"mafia": 4}, "The story of Henry Hill and his life in the mob."},
	{329, "Jurassic Park", 1993, 127, 3.7, 7600, 8.2, 91, 63000000, 920100000, "Steven Spielberg", []int{2, 7}, []string{"Sam Neill:Alan Grant", "Laura Dern:Ellie Sattler"}, map[string]int{"dinosaurs": 9}, "A theme park of cloned dinosaurs breaks down."},
	{8587, "The Lion King", 1994, 89, 3.8, 6200, 8.5, 93, 45000000, 788241776, "Roger Allers", []int{3, 6}, []string{"Matthew Broderick:Simba", "Jeremy Irons:Scar"}, map[string]int{"disney": 6}, "A lion cub flees his kingdom after his father's death."},
	{629, "The Usual Suspects", 1995, 106, 4.2, 5500, 8.5, 88, 6000000, 23341568, "Bryan Singer", []int{5, 8}, []string{"Kevin Spacey:Verbal Kint"}, map[string]int{"twist ending": 8}, "A sole survivor tells the story of a heist gone wrong."},
	{807, "Se7en", 1995, 127, 4.1, 6300, 8.6, 83, 33000000, 327311859, "David Fincher", []int{5, 8}, []string{"Brad Pitt:David Mills", "Morgan Freeman:William Somerset"}, map[string]int{"serial killer": 5}, "Two detectives hunt a killer who uses the seven deadly sins."},
	{274, "The Silence of the Lambs", 1991, 118, 4.2, 7100, 8.6, 95, 19000000, 272742922, "Jonathan Demme", []int{5, 8}, []string{"Jodie Foster:Clarice Starling", "Anthony Hopkins:Hannibal Lecter"}, map[string]int{"psychological": 4}, "A young FBI cadet seeks help from an imprisoned cannibal."},
	{9806, "The Incredibles", 2004, 115, 3.8, 4200, 8.0, 97, 92000000, 631442092, "Brad Bird", []int{1, 3, 4}, []string{"Craig T. Nelson:Bob Parr", "Holly Hunter:Helen Parr"}, map[string]int{"pixar": 5}, "A family of undercover superheroes is forced back into action."},
	{1891, "The Empire Strikes Back", 1980, 124, 4.2, 7300, 8.7, 94, 18000000, 538400000, "Irvin Kershner", []int{1, 2, 7}, []string{"Mark Hamill:Luke Skywalker", "Carrie Fisher:Leia Organa"}, map[string]int{"space opera": 6}, "The rebels scatter after the Empire attacks their base."},
	{194, "Amélie", 2001, 122, 4.0, 4700, 8.3, 89, 10000000, 174000000, "Jean-Pierre Jeunet", []int{4, 6}, []string{"Audrey Tautou:Amélie Poulain", "Mathieu Kassovitz:Nino Quincampoix"}, map[string]int{"paris": 4}, "A shy waitress decides to change the lives of those around her."},
	{9999, "Untitled Documentary", 0, 0, 0, 0, 0, 0, 0, 0, "", nil, nil, nil, ""},
}

// SeedCatalog returns the built-in demo catalog.
func SeedCatalog() *Catalog {
	genreByID := make(map[int]moviesapi.Genre, len(seedGenres))
	for _, g := range seedGenres {
		genreByID[g.ID] = g
	}

	movies := make([]moviesapi.MovieDetail, 0, len(seedMovies))
	nextPerson := 1000
	for _, s := range seedMovies {
		m := moviesapi.MovieDetail{
			ID:         s.id,
			Title:      s.title,
			Overview:   s.overview,
			PosterPath: fmt.Sprintf("/poster-%d.jpg", s.id),
		}
		if s.year > 0 {
			m.ReleaseYear = intPtr(s.year)
		}
		if s.runtime > 0 {
			m.RuntimeMinutes = intPtr(s.runtime)
		}
		if s.rating > 0 {
			m.AvgRating = floatPtr(s.rating)
			m.RatingCount = s.votes
		}
		if s.imdb > 0 {
			m.IMDbRating = floatPtr(s.imdb)
		}
		if s.rt > 0 {
			m.RottenTomatoesScore = intPtr(s.rt)
		}
		if s.budget > 0 {
			m.Budget = moviesapi.NewAmount(s.budget)
		}
		if s.revenue > 0 {
			m.Revenue = moviesapi.NewAmount(s.revenue)
			m.BoxOffice = moviesapi.NewAmount(s.revenue / 2)
			m.BackdropPath = fmt.Sprintf("/backdrop-%d.jpg", s.id)
		}
		for _, id := range s.genres {
			m.Genres = append(m.Genres, genreByID[id])
		}
		for _, entry := range s.cast {
			name, character := splitCast(entry)
			nextPerson++
			m.Cast = append(m.Cast, moviesapi.CastMember{PersonID: nextPerson, Name: name, Character: character})
		}
		if s.director != "" {
			nextPerson++
			m.Crew = append(m.Crew,
				moviesapi.CrewMember{PersonID: nextPerson, Name: s.director, Job: "Director", Department: "Directing"},
			)
		}
		for tag, count := range s.tags {
			m.Tags = append(m.Tags, moviesapi.Tag{Tag: tag, Count: count})
		}
		sortTags(m.Tags)
		movies = append(movies, m)
	}
	return NewCatalog(seedGenres, movies)
}

func splitCast(entry string) (string, string) {
	name, character, _ := strings.Cut(entry, ":")
	return name, character
}

// sortTags orders by count descending, then tag text.
func sortTags(tags []moviesapi.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
