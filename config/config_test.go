package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseChatIDs(t *testing.T) {
	assert.Empty(t, parseChatIDs(""))
	assert.Equal(t, []int64{1}, parseChatIDs("1"))
	assert.Equal(t, []int64{1, -100200, 3}, parseChatIDs("1, -100200 ,3"))
	assert.Equal(t, []int64{5}, parseChatIDs("5,notanumber"))
}

func TestAdminIDsDeduplicatesHR(t *testing.T) {
	cfg := &Config{OwnerIDs: []int64{10, 20}, HRChatID: 30}
	assert.Equal(t, []int64{10, 20, 30}, cfg.AdminIDs())

	cfg = &Config{OwnerIDs: []int64{10, 20}, HRChatID: 20}
	assert.Equal(t, []int64{10, 20}, cfg.AdminIDs())

	cfg = &Config{OwnerIDs: []int64{10}}
	assert.Equal(t, []int64{10}, cfg.AdminIDs())
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{OwnerIDs: []int64{10}, HRChatID: 30}
	assert.True(t, cfg.IsAdmin(10))
	assert.True(t, cfg.IsAdmin(30))
	assert.False(t, cfg.IsAdmin(99))

	// Zero HR id never matches
	cfg = &Config{OwnerIDs: []int64{10}}
	assert.False(t, cfg.IsAdmin(0))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseDuration(""))
	assert.Equal(t, time.Duration(0), parseDuration("soon"))
	assert.Equal(t, time.Duration(0), parseDuration("-5m"))
	assert.Equal(t, 2*time.Hour, parseDuration("2h"))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}
