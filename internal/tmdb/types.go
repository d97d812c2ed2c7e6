package tmdb

// MovieSummary is one movie as it appears in paginated lists.
// Values are immutable once fetched; there is no local mutation.
type MovieSummary struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path" nullable:"true"`
	BackdropPath     *string `json:"backdrop_path" nullable:"true"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
}

// PageEnvelope is the paginated wrapper around a list of movie summaries.
// Invariant: Page <= TotalPages; Page < TotalPages means a further page is
// fetchable. Result ordering is server-defined and preserved as received.
type PageEnvelope struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// HasNextPage reports whether a further page exists after this one.
func (e PageEnvelope) HasNextPage() bool {
	return e.Page < e.TotalPages
}

// Genre maps an upstream genre id to its display name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response shape of the genre catalog endpoint.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// ProductionCompany is a company credit on a movie detail.
type ProductionCompany struct {
	ID            int     `json:"id"`
	LogoPath      *string `json:"logo_path" nullable:"true"`
	Name          string  `json:"name"`
	OriginCountry string  `json:"origin_country"`
}

// ProductionCountry is a country credit on a movie detail.
type ProductionCountry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// SpokenLanguage is a language credit on a movie detail.
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO639      string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// MovieDetail is the full per-id record, a superset of MovieSummary.
type MovieDetail struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path" nullable:"true"`
	BackdropPath     *string `json:"backdrop_path" nullable:"true"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`

	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Runtime             *int                `json:"runtime" nullable:"true"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Homepage            *string             `json:"homepage" nullable:"true"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
}
