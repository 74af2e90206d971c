// Package funko defines the collectible-figure record persisted by the store.
package funko

import "fmt"

// FunkoType is the product line a figure belongs to.
type FunkoType string

const (
	TypePop       FunkoType = "Pop!"
	TypePopRides  FunkoType = "Pop! Rides"
	TypeVinylSoda FunkoType = "Vinyl Soda"
	TypeVinylGold FunkoType = "Vinyl Gold"
)

// FunkoGenre is the franchise genre a figure belongs to.
type FunkoGenre string

const (
	GenreAnimation  FunkoGenre = "Animation"
	GenreMoviesTV   FunkoGenre = "Movies & TV"
	GenreVideoGames FunkoGenre = "Video Games"
	GenreSports     FunkoGenre = "Sports"
	GenreMusic      FunkoGenre = "Music"
	GenreAnime      FunkoGenre = "Anime"
)

// Funko is one collectible record. IDs are unique per user collection;
// uniqueness is enforced by the request handler, not here.
type Funko struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Type            FunkoType  `json:"type"`
	Genre           FunkoGenre `json:"genre"`
	Franchise       string     `json:"franchise"`
	Number          int        `json:"number"`
	Exclusive       bool       `json:"exclusive"`
	Characteristics string     `json:"characteristics"`
	MarketValue     float64    `json:"marketValue"`
}

// ErrInvalidMarketValue is returned by New when the market value is not
// strictly positive. This is the only domain invariant: every other field
// is stored verbatim, empty strings and negative numbers included.
var ErrInvalidMarketValue = fmt.Errorf("market value must be strictly positive")

// New builds a Funko, rejecting non-positive market values. No other
// normalization or trimming is applied.
func New(id int, name, description string, typ FunkoType, genre FunkoGenre, franchise string, number int, exclusive bool, characteristics string, marketValue float64) (*Funko, error) {
	if marketValue <= 0 {
		return nil, ErrInvalidMarketValue
	}

	return &Funko{
		ID:              id,
		Name:            name,
		Description:     description,
		Type:            typ,
		Genre:           genre,
		Franchise:       franchise,
		Number:          number,
		Exclusive:       exclusive,
		Characteristics: characteristics,
		MarketValue:     marketValue,
	}, nil
}
