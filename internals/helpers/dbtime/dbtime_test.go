package dbtime

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodParseAndValue(t *testing.T) {
	tod, err := Parse("09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, tod.Hour())
	assert.Equal(t, 0, tod.Minute())

	v, err := tod.Value()
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", v)

	_, err = Parse("9am")
	assert.Error(t, err)
}

func TestTodScan(t *testing.T) {
	var tod Tod
	require.NoError(t, tod.Scan([]byte("17:30:15")))
	assert.Equal(t, "17:30", tod.String())

	require.NoError(t, tod.Scan(time.Date(2024, 5, 1, 8, 45, 0, 0, time.UTC)))
	assert.Equal(t, "08:45", tod.String())

	assert.Error(t, tod.Scan(42))
}

func TestTodJSON(t *testing.T) {
	var got struct {
		Start Tod `json:"start"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(`{"start":"08:30"}`), &got))
	assert.Equal(t, "08:30", got.Start.String())

	out, err := sonic.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"08:30:00"}`, string(out))

	assert.Error(t, sonic.Unmarshal([]byte(`{"start":"late"}`), &got))
	assert.Error(t, sonic.Unmarshal([]byte(`{"start":830}`), &got))
}

func TestTodOn(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	at := MustParse("09:15").On(day, loc)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 15, 0, 0, loc), at)
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	// 20:00 UTC on the 4th is already the 5th in WIB
	ts := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOf(ts, loc))
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), DateOf(ts, time.UTC))
}

func TestMinuteRounding(t *testing.T) {
	assert.Equal(t, 46, RoundMinutes(45*time.Minute+30*time.Second))
	assert.Equal(t, 45, RoundMinutes(45*time.Minute+29*time.Second))
	assert.Equal(t, 5, CeilMinutes(5*time.Minute))
	assert.Equal(t, 1, CeilMinutes(10*time.Second))
	assert.Equal(t, 0, CeilMinutes(-time.Minute))
}
