package steam

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteamTime(t *testing.T) {
	when, err := parseSteamTime("Mar 14 2021 01: +0")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.March, 14, 1, 0, 0, 0, time.UTC), when)

	when, err = parseSteamTime("Dec 01 2023 23: +0")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 1, 23, 0, 0, 0, time.UTC), when)
}

func TestParseSteamTime_Malformed(t *testing.T) {
	for _, s := range []string{"", "Mar 14", "Xyz 14 2021 01: +0", "Mar xx 2021 01: +0"} {
		_, err := parseSteamTime(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseHistoryRow(t *testing.T) {
	tick, err := parseHistoryRow(json.RawMessage(`["Mar 14 2021 01: +0", 0.223, "5"]`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.March, 14, 1, 0, 0, 0, time.UTC), tick.Time)
	assert.InDelta(t, 0.223, tick.Price, 1e-9)
	assert.Equal(t, 5, tick.Volume)
}

func TestParseHistoryRow_Malformed(t *testing.T) {
	for _, raw := range []string{
		`["Mar 14 2021 01: +0", 0.223]`,
		`[42, 0.223, "5"]`,
		`["Mar 14 2021 01: +0", "abc", "5"]`,
		`{}`,
	} {
		_, err := parseHistoryRow(json.RawMessage(raw))
		assert.Error(t, err, "row %s", raw)
	}
}

func TestCentsStringToPrice(t *testing.T) {
	price := centsStringToPrice(json.RawMessage(`"1532"`))
	require.NotNil(t, price)
	assert.InDelta(t, 15.32, *price, 1e-9)

	// solo el string de céntimos cuenta como presente
	assert.Nil(t, centsStringToPrice(json.RawMessage(`null`)))
	assert.Nil(t, centsStringToPrice(json.RawMessage(`0`)))
	assert.Nil(t, centsStringToPrice(json.RawMessage(`"abc"`)))
}

func TestGraphLevelUnmarshal(t *testing.T) {
	var lvl graphLevel
	require.NoError(t, json.Unmarshal([]byte(`[10.5, 12, "12 sell orders at $10.50 or lower"]`), &lvl))
	assert.Equal(t, 10.5, lvl.Price)
	assert.Equal(t, 12, lvl.Volume)
	assert.Equal(t, "12 sell orders at $10.50 or lower", lvl.Label)
}
