package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/safar/pharmsync/internal/database"
	"github.com/safar/pharmsync/internal/models"
	"github.com/safar/pharmsync/internal/schema"
)

// Fixed document keys.
const (
	StateKey   = "pharmsync.state.v1"
	SessionKey = "pharmsync.me.v1"
)

// Store owns the AppState and session documents. Every method holds the store
// mutex for its whole read-validate-write sequence.
type Store struct {
	mu      sync.Mutex
	backend database.Backend
	seeder  *Seeder
}

func New(backend database.Backend, seeder *Seeder) *Store {
	return &Store{backend: backend, seeder: seeder}
}

func (s *Store) Backend() database.Backend { return s.backend }

// Tx is the working copy handed to an Update callback.
type Tx struct {
	State *models.AppState

	session    *models.CurrentUser
	sessionSet bool
}

// SetSession stages a session change written together with the state. nil clears it.
func (tx *Tx) SetSession(u *models.CurrentUser) {
	tx.session = u
	tx.sessionSet = true
}

func (s *Store) EnsureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSeeded(ctx)
}

func (s *Store) ensureSeeded(ctx context.Context) error {
	raw, err := s.backend.Get(ctx, StateKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		glog.Infof("No state document found, seeding demo data")
		return s.reseed(ctx, false)
	}
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	if _, err := decodeState(raw); err != nil {
		glog.Warningf("Stored state is invalid, reseeding: %v", err)
		return s.reseed(ctx, true)
	}
	return nil
}

func (s *Store) reseed(ctx context.Context, clearSession bool) error {
	state, err := s.seeder.Generate()
	if err != nil {
		return fmt.Errorf("generate seed: %w", err)
	}
	body, err := encodeState(state)
	if err != nil {
		return err
	}

	ops := []database.Op{database.PutOp(StateKey, body)}
	if clearSession {
		ops = append(ops, database.DeleteOp(SessionKey))
	}
	if err := s.backend.Write(ctx, ops...); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}
	return nil
}

func (s *Store) ReadState(ctx context.Context) (*models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readState(ctx)
}

func (s *Store) readState(ctx context.Context) (*models.AppState, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	raw, err := s.backend.Get(ctx, StateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return decodeState(raw)
}

// WriteState validates next and replaces the stored document. An invalid
// document is rejected and the store is left untouched.
func (s *Store) WriteState(ctx context.Context, next *models.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := encodeState(next)
	if err != nil {
		return err
	}
	if err := database.Put(ctx, s.backend, StateKey, body); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// ReadSession returns the active session or nil.
func (s *Store) ReadSession(ctx context.Context) (*models.CurrentUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSession(ctx)
}

func (s *Store) readSession(ctx context.Context) (*models.CurrentUser, error) {
	raw, err := s.backend.Get(ctx, SessionKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var u models.CurrentUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := schema.Validate("session", u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) WriteSession(ctx context.Context, u *models.CurrentUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, err := sessionOp(u)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, op); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Update runs fn against a freshly read copy of the state and persists the
// result. Nothing is written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState(ctx)
	if err != nil {
		return err
	}

	tx := &Tx{State: state}
	if err := fn(tx); err != nil {
		return err
	}

	body, err := encodeState(tx.State)
	if err != nil {
		return err
	}
	ops := []database.Op{database.PutOp(StateKey, body)}
	if tx.sessionSet {
		op, err := sessionOp(tx.session)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	if err := s.backend.Write(ctx, ops...); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// View runs fn against a read-only copy of the state.
func (s *Store) View(ctx context.Context, fn func(state *models.AppState) error) error {
	s.mu.Lock()
	state, err := s.readState(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(state)
}

// Reset replaces the state with a fresh seed and clears the session.
func (s *Store) Reset(ctx context.Context) (*models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reseed(ctx, true); err != nil {
		return nil, err
	}
	return s.readState(ctx)
}

func decodeState(raw []byte) (*models.AppState, error) {
	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if err := schema.Validate("state", state); err != nil {
		return nil, err
	}
	return &state, nil
}

func encodeState(state *models.AppState) ([]byte, error) {
	if state == nil {
		return nil, errors.New("state must not be nil")
	}
	if err := schema.Validate("state", state); err != nil {
		return nil, err
	}
	body, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return body, nil
}

func sessionOp(u *models.CurrentUser) (database.Op, error) {
	if u == nil {
		return database.DeleteOp(SessionKey), nil
	}
	if err := schema.Validate("session", u); err != nil {
		return database.Op{}, err
	}
	body, err := json.Marshal(u)
	if err != nil {
		return database.Op{}, fmt.Errorf("encode session: %w", err)
	}
	return database.PutOp(SessionKey, body), nil
}
