package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "00:00", want: 0},
		{input: "09:30", want: 570},
		{input: "14:00", want: 840},
		{input: "23:59", want: 1439},
		{input: "24:00", wantErr: true},
		{input: "9:30am", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseClock(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:30", FormatClock(570))
	assert.Equal(t, "23:59", FormatClock(1439))
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  time.Weekday
		found bool
	}{
		{input: "0", want: time.Sunday, found: true},
		{input: "7", want: time.Sunday, found: true},
		{input: "1", want: time.Monday, found: true},
		{input: "6", want: time.Saturday, found: true},
		{input: "mon", want: time.Monday, found: true},
		{input: "Monday", want: time.Monday, found: true},
		{input: " WED ", want: time.Wednesday, found: true},
		{input: "tues", want: time.Tuesday, found: true},
		{input: "8", found: false},
		{input: "-1", found: false},
		{input: "", found: false},
		{input: "someday", found: false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, found := ParseWeekday(tc.input)
			assert.Equal(t, tc.found, found)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
