package postgres

import (
	"errors"
	"testing"

	"github.com/OCAP2/osu-parsers/internal/database"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInit_ConnectError(t *testing.T) {
	b := New(zerolog.Nop())
	b.open = func(zerolog.Logger) (*gorm.DB, error) { return nil, errors.New("refused") }

	err := b.Init()
	require.Error(t, err)
	assert.EqualError(t, err, "failed to connect to postgres: refused")
	assert.NoError(t, b.Close())
}

// The dialect does not matter to the wrapper, so an in-memory SQLite database
// stands in for the server.
func TestBackend_Lifecycle(t *testing.T) {
	b := New(zerolog.Nop())
	b.open = func(log zerolog.Logger) (*gorm.DB, error) { return database.OpenSQLite("", log) }

	require.NoError(t, b.Init())
	require.NoError(t, b.SaveScore(&model.Score{Path: "a.osr", Username: "cookiezi"}))

	scores, err := b.Scores()
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "cookiezi", scores[0].Username)
	assert.NoError(t, b.Close())
}
