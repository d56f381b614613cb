package types

// LocationRecord is one venue row from the backing venue table.
// StateProvince may be empty; a venue with no recorded state is still
// reachable through the location hierarchy using the empty-string sentinel.
type LocationRecord struct {
	Country       string   `json:"country"`
	StateProvince string   `json:"state_province"`
	City          string   `json:"city"`
	VenueName     string   `json:"name"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	// URL is the venue's website or live menu URL, when known.
	URL string `json:"url,omitempty"`
	// MenuFile points at a local static menu associated with the venue,
	// used as the fallback when the live source is unreachable.
	MenuFile string `json:"menu_file,omitempty"`
}
