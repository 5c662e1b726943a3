package entities

// GlobalConfig is the per-deployment singleton.
//
// VoteTitles is append-only and duplicate-free; a title is listed exactly when
// its VoteRecord exists.
type GlobalConfig struct {
	Owner      Principal    `json:"owner"`
	Admins     PrincipalSet `json:"admins"`
	VoteTitles []string     `json:"vote_titles"`
}

func (c GlobalConfig) HasTitle(title string) bool {
	for _, item := range c.VoteTitles {
		if item == title {
			return true
		}
	}
	return false
}

func (c GlobalConfig) Clone() GlobalConfig {
	out := c
	out.Admins = c.Admins.Clone()
	out.VoteTitles = append([]string{}, c.VoteTitles...)
	return out
}
