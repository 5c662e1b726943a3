package entities

// Coin is an amount of a fungible asset identified by denom.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Funds is the multiset of coins attached to a ballot. Order is significant:
// lookups by denom return the first matching entry.
type Funds []Coin

// First returns the first coin carrying denom. Denom matching is exact.
func (f Funds) First(denom string) (Coin, bool) {
	for _, coin := range f {
		if coin.Denom == denom {
			return coin, true
		}
	}
	return Coin{}, false
}
