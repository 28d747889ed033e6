package auctions

import (
	"testing"
	"time"

	"auction-house/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKeepsLocalCalendarDay(t *testing.T) {
	want := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-11-01",
		"2026-11-01T00:30:00+02:00",
		"2026-11-01T23:30:00-05:00",
		"2026-11-01T12:00:00Z",
	} {
		got, err := parseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "01/11/2026", "2026-13-01"} {
		_, err := parseDate(in)
		assert.True(t, apperr.IsValidation(err), "%q", in)
	}
}
