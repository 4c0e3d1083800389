package spotify

// CurrentlyPlaying is the playback snapshot from /me/player/currently-playing.
// Item is nil when the playing entity is not a track (e.g. a podcast episode
// the catalog hides).
type CurrentlyPlaying struct {
	CurrentlyPlayingType string `json:"currently_playing_type"`
	IsPlaying            bool   `json:"is_playing"`
	ProgressMs           *int   `json:"progress_ms"`
	Timestamp            int64  `json:"timestamp"`
	Item                 *Track `json:"item"`
}

// TopTracksPage is one page of the ranked top-tracks listing. Items accumulate
// by concatenation across "load more" fetches within a single time range and
// reset whenever the range changes.
type TopTracksPage struct {
	Href     string  `json:"href"`
	Items    []Track `json:"items"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
}

// TimeRange selects the window the top-items ranking is computed over.
type TimeRange string

const (
	TimeRangeShort  TimeRange = "short_term"
	TimeRangeMedium TimeRange = "medium_term"
	TimeRangeLong   TimeRange = "long_term"
)

// Valid reports whether tr is one of the provider's supported windows.
func (tr TimeRange) Valid() bool {
	switch tr {
	case TimeRangeShort, TimeRangeMedium, TimeRangeLong:
		return true
	}
	return false
}

// ItemType selects which ranked entity the top-items endpoint returns.
type ItemType string

const (
	ItemTypeTracks  ItemType = "tracks"
	ItemTypeArtists ItemType = "artists"
)
