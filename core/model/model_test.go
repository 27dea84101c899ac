package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonsKeepsFirstOccurrenceOrder(t *testing.T) {
	var r Reasons
	assert.True(t, r.Add("b"))
	assert.True(t, r.Add("a"))
	assert.False(t, r.Add("b"))
	assert.Equal(t, []string{"b", "a"}, r.List())
	assert.Equal(t, "b; a", r.Join("; "))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `["b","a"]`, string(data))

	var back Reasons
	require.NoError(t, json.Unmarshal([]byte(`["x","x","y"]`), &back))
	assert.Equal(t, []string{"x", "y"}, back.List())
}

func TestProjectClaimConservesUnits(t *testing.T) {
	p := NewProject(0, 2, "2023", Period{}, 2, nil)
	require.NoError(t, p.Claim(YearMonth{2023, time.January}))
	require.NoError(t, p.Claim(YearMonth{2023, time.February}))
	assert.Error(t, p.Claim(YearMonth{2023, time.March}))
	assert.Equal(t, 2, p.Allocated)
	assert.Equal(t, 0, p.Unallocated)
	assert.True(t, p.Holds(YearMonth{2023, time.February}))
	assert.False(t, p.Holds(YearMonth{2023, time.March}))
}

func TestChronologicalDoesNotReorderInput(t *testing.T) {
	in := []YearMonth{{2024, time.March}, {2023, time.December}, {2024, time.January}}
	out := Chronological(in)
	assert.Equal(t, []YearMonth{{2023, time.December}, {2024, time.January}, {2024, time.March}}, out)
	assert.Equal(t, YearMonth{2024, time.March}, in[0])
	assert.Equal(t, YearMonth{2025, time.January}, YearMonth{2024, time.December}.Next())
	assert.Equal(t, "2024-03", in[0].String())
}
