package domain

// Frame is a snapshot of a typing animation session.
//
// Text is always a prefix of the session's joined text; Cursor counts runes.
type Frame struct {
	Generation uint64 `json:"generation"`
	Text       string `json:"text"`
	Cursor     int    `json:"cursor"`
	Total      int    `json:"total"`
	Complete   bool   `json:"complete"`
}

// Progress returns the revealed fraction in [0, 1].
func (f Frame) Progress() float64 {
	if f.Total == 0 {
		return 1
	}
	return float64(f.Cursor) / float64(f.Total)
}
