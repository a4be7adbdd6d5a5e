package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Sales":            "sales",
		"Unit Price (USD)": "unitpriceusd",
		"PM₂.₅":            "pm25",
		"CO₂ level":        "co2level",
		"pm2_5":            "pm25",
		"  --- ":           "",
		"Température":      "temprature",
		"ABC123xyz":        "abc123xyz",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Hello, World!", "NO₂ / O₃", "ÄÖÜ ß", "a_b-c.d", "12.5%", "Revenue ($)"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "12", NormalizeValue(12))
	assert.Equal(t, "15", NormalizeValue(1.5))
	assert.Equal(t, "true", NormalizeValue(true))
	assert.Equal(t, "", NormalizeValue(nil))
	assert.Equal(t, "north", NormalizeValue("North"))
}

func TestTokensAndWords(t *testing.T) {
	assert.Equal(t, []string{"show", "sales", "by", "region"}, Tokens("Show Sales by - Region"))
	assert.Equal(t, []string{"unit", "price", "usd"}, Words("Unit_Price (USD)"))
	assert.Equal(t, []string{"pm25"}, Words("PM₂₅"))
	assert.Empty(t, Tokens("   "))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Average Unit-Price by region", "unit price"))
	assert.True(t, Contains("level of NO₂", "no2"))
	assert.False(t, Contains("anything", "--"))
	assert.False(t, Contains("sales", "revenue"))
}
