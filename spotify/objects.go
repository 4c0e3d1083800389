// Package spotify holds the wire models shared by the authorization and
// resource clients, together with the tagged Result envelope every network
// operation resolves to.
package spotify

// ExternalURLs carries the provider's public links for an entity.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Image is one rendition of cover or profile art.
type Image struct {
	Height int    `json:"height"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
}

// Followers holds the follower count of a profile.
type Followers struct {
	Total int `json:"total"`
}

// Profile is the authenticated user's account, as returned by /me.
type Profile struct {
	Country      string       `json:"country"`
	DisplayName  string       `json:"display_name"`
	Email        string       `json:"email"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    Followers    `json:"followers"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images"`
	Product      string       `json:"product"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Artist is the simplified artist object embedded in tracks and albums.
type Artist struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Album is the simplified album object embedded in tracks.
type Album struct {
	AlbumType    string       `json:"album_type"`
	Artists      []Artist     `json:"artists"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	ID           string       `json:"id"`
	Images       []Image      `json:"images"`
	Name         string       `json:"name"`
	ReleaseDate  string       `json:"release_date"`
	TotalTracks  int          `json:"total_tracks"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

// Track is a single catalog track with its album and artists.
type Track struct {
	Album        Album        `json:"album"`
	Artists      []Artist     `json:"artists"`
	DiscNumber   int          `json:"disc_number"`
	Explicit     bool         `json:"explicit"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	ID           string       `json:"id"`
	IsLocal      bool         `json:"is_local"`
	Name         string       `json:"name"`
	Popularity   int          `json:"popularity"`
	PreviewURL   *string      `json:"preview_url"`
	TrackNumber  int          `json:"track_number"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}
