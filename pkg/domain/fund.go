package domain

// NAVPoint is one dated net asset value.
type NAVPoint struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

// FundReport describes a fund and its latest NAV entries.
type FundReport struct {
	Name     string     `json:"name"`
	Code     int        `json:"code"`
	House    string     `json:"fund_house,omitempty"`
	Category string     `json:"category,omitempty"`
	Points   []NAVPoint `json:"data"`
}
