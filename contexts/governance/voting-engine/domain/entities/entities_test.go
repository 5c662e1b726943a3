package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrincipalSet(t *testing.T) {
	set := NewPrincipalSet([]Principal{"a", " b", "a", "", "  "})
	require.Equal(t, PrincipalSet{"a", "b"}, set)

	set = set.Add("b").Add("c")
	require.Equal(t, PrincipalSet{"a", "b", "c"}, set)

	removed := set.Remove("b")
	require.Equal(t, PrincipalSet{"a", "c"}, removed)
	require.Equal(t, PrincipalSet{"a", "b", "c"}, set)
	require.Equal(t, PrincipalSet{"a", "c"}, removed.Remove("missing"))
}

func TestPrincipalSetCloneOfNilIsEmpty(t *testing.T) {
	var set PrincipalSet
	clone := set.Clone()
	require.NotNil(t, clone)
	require.Empty(t, clone)
}

func TestFundsFirst(t *testing.T) {
	funds := Funds{{Denom: "earth", Amount: 1000}, {Denom: "test", Amount: 1}, {Denom: "test", Amount: 9}}
	coin, ok := funds.First("test")
	require.True(t, ok)
	require.Equal(t, uint64(1), coin.Amount)

	_, ok = funds.First("moon")
	require.False(t, ok)
}

func TestVoteRecordClone(t *testing.T) {
	record := VoteRecord{AlreadyVoted: PrincipalSet{"a"}, Whitelist: PrincipalSet{"w"}}
	clone := record.Clone()
	clone.AlreadyVoted[0] = "z"
	clone.Whitelist[0] = "z"
	require.Equal(t, Principal("a"), record.AlreadyVoted[0])
	require.Equal(t, Principal("w"), record.Whitelist[0])
}

func TestGlobalConfigClone(t *testing.T) {
	cfg := GlobalConfig{Owner: "o", Admins: PrincipalSet{"a"}, VoteTitles: []string{"q1"}}
	clone := cfg.Clone()
	clone.VoteTitles = append(clone.VoteTitles, "q2")
	clone.Admins[0] = "z"
	require.Equal(t, []string{"q1"}, cfg.VoteTitles)
	require.Equal(t, Principal("a"), cfg.Admins[0])
	require.True(t, clone.HasTitle("q2"))
	require.False(t, cfg.HasTitle("q2"))
}

func TestChoiceValid(t *testing.T) {
	require.True(t, ChoiceFor.Valid())
	require.True(t, ChoiceAgainst.Valid())
	require.True(t, ChoiceAbstain.Valid())
	require.False(t, Choice("for").Valid())
	require.False(t, Choice("").Valid())
}
