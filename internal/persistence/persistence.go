package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/therm2go/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketControllerState = "controllerState"
)

// ControllerState is the persisted part of a zone control loop.
type ControllerState struct {
	// IntegralTerm is the accumulated integral term in output units
	IntegralTerm float64   `json:"integralTerm"`
	SavedAt      time.Time `json:"savedAt"`
}

type Persistence interface {
	Init() error

	LoadControllerState(zoneId string) (*ControllerState, error)
	SaveControllerState(zoneId string, state ControllerState) (err error)
	DeleteControllerState(zoneId string) (err error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveControllerState saves the loop state of the given zone to persistence
func (p persistence) SaveControllerState(zoneId string, state ControllerState) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketControllerState))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		err = b.Put([]byte(zoneId), data)
		return err
	})
}

// LoadControllerState loads the loop state of the given zone from
// persistence, returning nil when nothing was stored yet. A corrupted
// entry is deleted and treated like a missing one.
func (p persistence) LoadControllerState(zoneId string) (*ControllerState, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var state *ControllerState
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketControllerState))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(zoneId))
		if v == nil {
			return nil
		}

		loaded := ControllerState{}
		err := json.Unmarshal(v, &loaded)
		if err != nil {
			ui.Warning("Deleting corrupted controller state for zone %s: %v", zoneId, err)
			return b.Delete([]byte(zoneId))
		}
		state = &loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (p persistence) DeleteControllerState(zoneId string) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketControllerState))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(zoneId))
	})
}
