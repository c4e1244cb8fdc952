package model

import "time"

// CastMember is one credited actor on a movie. ProfilePath may be empty
// when the catalog provider has no image for the actor.
type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Movie is a normalized title record merged from the primary catalog
// provider (identity, title) and the secondary ratings provider
// (plot, poster, cast, rating, runtime). The ID is the primary
// provider's external id and is assigned on first resolution; movies
// are never updated after insertion.
//
// Fields:
//  ID               – external catalog id (movies.id).
//  Title            – canonical title.
//  Overview         – plot summary.
//  PosterPath       – poster image reference.
//  BackdropPath     – backdrop image reference (may be empty).
//  Genres           – genre names.
//  Casts            – credited cast members.
//  ReleaseDate      – release date as reported by the provider.
//  Runtime          – runtime in minutes.
//  VoteAverage      – average rating on a 0–10 scale.
//  OriginalLanguage – original language name.
//  Tagline          – marketing tagline (may be empty).
//  CreatedAt        – row creation timestamp.
type Movie struct {
	ID               string       `json:"_id"`
	Title            string       `json:"title"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path"`
	BackdropPath     string       `json:"backdrop_path"`
	Genres           []string     `json:"genres"`
	Casts            []CastMember `json:"casts"`
	ReleaseDate      string       `json:"release_date"`
	Runtime          uint32       `json:"runtime"`
	VoteAverage      float64      `json:"vote_average"`
	OriginalLanguage string       `json:"original_language"`
	Tagline          string       `json:"tagline"`
	CreatedAt        time.Time    `json:"-"`
}
