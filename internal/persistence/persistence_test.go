package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPersistence(t *testing.T) Persistence {
	dbPath := filepath.Join(t.TempDir(), "therm2go.db")
	p := NewPersistence(dbPath)
	assert.NoError(t, p.Init())
	return p
}

func TestPersistenceControllerStateRoundtrip(t *testing.T) {
	// GIVEN
	p := testPersistence(t)
	state := ControllerState{
		IntegralTerm: 34.5,
		SavedAt:      time.Now(),
	}

	// WHEN
	err := p.SaveControllerState("livingroom", state)
	assert.NoError(t, err)
	loaded, err := p.LoadControllerState("livingroom")

	// THEN
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, state.IntegralTerm, loaded.IntegralTerm)
}

func TestPersistenceLoadUnknownZone(t *testing.T) {
	// GIVEN
	p := testPersistence(t)

	// WHEN
	loaded, err := p.LoadControllerState("unknown")

	// THEN
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPersistenceDeleteControllerState(t *testing.T) {
	// GIVEN
	p := testPersistence(t)
	err := p.SaveControllerState("livingroom", ControllerState{IntegralTerm: 12.0})
	assert.NoError(t, err)

	// WHEN
	err = p.DeleteControllerState("livingroom")
	assert.NoError(t, err)
	loaded, err := p.LoadControllerState("livingroom")

	// THEN
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPersistenceSaveOverwritesPreviousState(t *testing.T) {
	// GIVEN
	p := testPersistence(t)
	assert.NoError(t, p.SaveControllerState("livingroom", ControllerState{IntegralTerm: 10.0}))

	// WHEN
	assert.NoError(t, p.SaveControllerState("livingroom", ControllerState{IntegralTerm: 20.0}))
	loaded, err := p.LoadControllerState("livingroom")

	// THEN
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, 20.0, loaded.IntegralTerm)
}
