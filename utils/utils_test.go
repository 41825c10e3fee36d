package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeaveDate(t *testing.T) {
	now, err := time.Parse("2006-01-02 15:04", "2026-08-28 10:00")
	require.NoError(t, err)

	tests := []struct {
		arg      string
		wantKey  string
		wantDisp string
		wantOK   bool
	}{
		{"today", "2026-08-28", "28 Aug 2026", true},
		{"Tomorrow", "2026-08-29", "29 Aug 2026", true},
		{"01-09-2026", "2026-09-01", "01 Sep 2026", true},
		{"next friday", "", "", false},
		{"sick", "", "", false},
		{"2026-09-01", "", "", false},
	}

	for _, tt := range tests {
		key, disp, ok := ParseLeaveDate(tt.arg, now)
		assert.Equal(t, tt.wantOK, ok, tt.arg)
		assert.Equal(t, tt.wantKey, key, tt.arg)
		assert.Equal(t, tt.wantDisp, disp, tt.arg)
	}
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "28 Aug 2026", DisplayDate("2026-08-28"))
	assert.Equal(t, "garbage", DisplayDate("garbage"))
}

func TestMonthSheetName(t *testing.T) {
	assert.Equal(t, "Aug 2026", MonthSheetName("2026-08-28"))
	assert.Equal(t, "Unknown", MonthSheetName("not-a-date"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hell…", Truncate("hello world", 5))
	assert.Equal(t, "привет…", Truncate("привет всем тут", 7))
}
