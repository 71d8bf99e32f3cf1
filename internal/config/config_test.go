package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAdminIDs(t *testing.T) {
	assert.Equal(t, []int64{123, 456}, ParseAdminIDs("123,456"))
	assert.Equal(t, []int64{123, 456}, ParseAdminIDs(" 123 , 456 "))
	assert.Equal(t, []int64{123}, ParseAdminIDs("123,abc"))
	assert.Nil(t, ParseAdminIDs(""))
	assert.Nil(t, ParseAdminIDs(" , "))
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{Admin: AdminConfig{IDs: []int64{111, 222}}}
	assert.True(t, cfg.IsAdmin(111))
	assert.False(t, cfg.IsAdmin(333))

	empty := &Config{}
	assert.False(t, empty.IsAdmin(111))
}

func TestMaskedToken(t *testing.T) {
	cfg := &Config{Bot: BotConfig{Token: "1234567890:AAAAAAAA"}}
	assert.Equal(t, "1234567890*** (len 19)", cfg.MaskedToken())

	cfg.Bot.Token = "short"
	assert.Equal(t, "short*** (len 5)", cfg.MaskedToken())

	cfg.Bot.Token = ""
	assert.Equal(t, "(not set)", cfg.MaskedToken())
}
