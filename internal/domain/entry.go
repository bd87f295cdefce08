package domain

// Entry is one listing-page item referencing a downloadable result PDF.
// Equality is structural over all three fields.
type Entry struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Equal reports whether two entries match exactly; partial matches do not count.
func (e Entry) Equal(other Entry) bool {
	return e.Date == other.Date && e.Title == other.Title && e.URL == other.URL
}
