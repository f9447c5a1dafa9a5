package domain

// View is the suggestion state derived from an input buffer.
type View struct {
	// Token is the partial mention without its leading "@".
	Token string `json:"token"`
	// HasToken reports whether the last word of the input is a mention.
	HasToken bool `json:"has_token"`
	// Visible is true iff HasToken and the candidate cache is non-empty.
	Visible bool `json:"visible"`
	// Filtered holds the matching candidates, in catalogue order.
	Filtered []string `json:"filtered"`
	// NeedsFetch asks the host to activate the engine (token present, cache empty,
	// no fetch in flight, buffer not yet activated).
	NeedsFetch bool `json:"needs_fetch"`
}
