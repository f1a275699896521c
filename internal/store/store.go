// Package store persists a client's state bag to key-value storage, one key per field
// group, and reads it back with a documented fallback for every missing or corrupt key.
package store

import (
	"encoding/json"

	"ayuta/internal/metrics"
	"ayuta/internal/models"
	"ayuta/internal/repositories"

	"go.uber.org/zap"
)

// Storage keys owned by the store.
const (
	KeyCart         = "ayuta_cart"
	KeyOrders       = "ayuta_orders"
	KeyResults      = "ayuta_results"
	KeyUser         = "ayuta_user"
	KeySession      = "ayuta_session"
	KeyGoal         = "ayuta_goal"
	KeyPaymentEmail = "ayuta_payment_email"
)

// Keys lists every key the store reads, writes and clears.
var Keys = []string{KeyCart, KeyOrders, KeyResults, KeyUser, KeySession, KeyGoal, KeyPaymentEmail}

// Result reports the keys a Save or Clear could not write.
// Storage faults never fail the caller; a non-empty Result means the
// in-memory state and the persisted state have diverged.
type Result struct {
	Failed []string `json:"failed,omitempty"`
}

// Unsaved reports whether any key failed to persist.
func (r Result) Unsaved() bool {
	return len(r.Failed) > 0
}

// Store reads and writes models.State through a KeyValueStorage.
type Store struct {
	storage repositories.KeyValueStorage
	logger  *zap.Logger
	metrics metrics.Recorder
}

// New creates a Store. A nil logger or recorder disables logging or metrics.
func New(storage repositories.KeyValueStorage, logger *zap.Logger, recorder metrics.Recorder) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Store{
		storage: storage,
		logger:  logger,
		metrics: recorder,
	}
}

// Load assembles the state from storage. It never fails: every key falls back
// independently and the collections are always non-nil.
func (s *Store) Load() models.State {
	state := models.State{
		Cart:         decodeList(s.read(KeyCart), KeyCart, validCartItem, s.logger),
		Orders:       decodeList(s.read(KeyOrders), KeyOrders, validOrder, s.logger),
		Results:      decodeList(s.read(KeyResults), KeyResults, validResult, s.logger),
		User:         decodeObject[models.UserProfile](s.read(KeyUser), KeyUser, s.logger),
		Session:      decodeObject[models.Session](s.read(KeySession), KeySession, s.logger),
		Goal:         decodeGoal(s.read(KeyGoal), s.logger),
		PaymentEmail: s.read(KeyPaymentEmail),
	}
	return sanitize(state)
}

// Save writes every field group to its own key. Absent collections are written
// as empty arrays and absent objects as null. Failed keys are logged and reported.
func (s *Store) Save(state models.State) Result {
	state = sanitize(state)
	if state.Goal == "" {
		state.Goal = models.GoalAll
	}

	var res Result
	s.writeJSON(KeyCart, state.Cart, &res)
	s.writeJSON(KeyOrders, state.Orders, &res)
	s.writeJSON(KeyResults, state.Results, &res)
	s.writeJSON(KeyUser, state.User, &res)
	s.writeJSON(KeySession, state.Session, &res)
	s.writeValue(KeyGoal, string(state.Goal), &res)
	s.writeValue(KeyPaymentEmail, state.PaymentEmail, &res)
	return res
}

// Clear removes every key the store owns. A failure on one key does not stop the others.
func (s *Store) Clear() Result {
	var res Result
	for _, key := range Keys {
		if err := s.storage.Remove(key); err != nil {
			s.logger.Warn("storage clear failed", zap.String("key", key), zap.Error(err))
			s.metrics.RecordStorageFault("remove")
			res.Failed = append(res.Failed, key)
		}
	}
	return res
}

// read returns the raw value of key, or "" when it is missing or unreadable.
func (s *Store) read(key string) string {
	value, ok, err := s.storage.Get(key)
	if err != nil {
		s.logger.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		s.metrics.RecordStorageFault("read")
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func (s *Store) writeJSON(key string, value any, res *Result) {
	body, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("storage encode failed", zap.String("key", key), zap.Error(err))
		s.metrics.RecordStorageFault("write")
		res.Failed = append(res.Failed, key)
		return
	}
	s.writeValue(key, string(body), res)
}

func (s *Store) writeValue(key, value string, res *Result) {
	if err := s.storage.Set(key, value); err != nil {
		s.logger.Warn("storage write failed", zap.String("key", key), zap.Error(err))
		s.metrics.RecordStorageFault("write")
		res.Failed = append(res.Failed, key)
	}
}

// sanitize forces the collections to be non-nil.
func sanitize(state models.State) models.State {
	if state.Cart == nil {
		state.Cart = []models.CartItem{}
	}
	if state.Orders == nil {
		state.Orders = []models.Order{}
	}
	if state.Results == nil {
		state.Results = []models.ResultEntry{}
	}
	return state
}
