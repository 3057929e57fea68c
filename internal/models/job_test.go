package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/models"
)

func TestParseStatus(t *testing.T) {
	for _, s := range models.Statuses {
		got, err := models.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"", "running", "DONE", "Pending "} {
		_, err := models.ParseStatus(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[models.Status]bool{
		models.StatusPending:   false,
		models.StatusRunning:   false,
		models.StatusCompleted: true,
		models.StatusFailed:    true,
		models.StatusCancelled: true,
	}
	for s, want := range terminal {
		assert.Equal(t, want, s.Terminal(), "status %s", s)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range models.Statuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, models.Status("ARCHIVED").Valid())
	assert.False(t, models.Status("").Valid())
}
