package store

import (
	"bytes"
	"encoding/json"
	"math"

	"ayuta/internal/models"

	"go.uber.org/zap"
)

// decodeList decodes a stored JSON array. A value that is not an array yields an
// empty list; entries that do not decode or fail valid are dropped.
func decodeList[T any](raw, key string, valid func(T) bool, logger *zap.Logger) []T {
	out := []T{}
	if raw == "" {
		return out
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("storage value is not a list, using default", zap.String("key", key), zap.Error(err))
		return out
	}

	for i, entry := range entries {
		if !isObject(entry) {
			logger.Warn("dropping malformed entry", zap.String("key", key), zap.Int("index", i))
			continue
		}
		var v T
		if err := json.Unmarshal(entry, &v); err != nil || !valid(v) {
			logger.Warn("dropping malformed entry", zap.String("key", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeObject decodes a stored JSON object; null, a non-object or a corrupt
// value all yield nil.
func decodeObject[T any](raw, key string, logger *zap.Logger) *T {
	if raw == "" {
		return nil
	}
	data := []byte(raw)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if !isObject(data) {
		logger.Warn("storage value is not an object, using default", zap.String("key", key))
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("storage value is corrupt, using default", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &v
}

// decodeGoal reads the stored goal scalar; blank or unknown goals mean "all".
func decodeGoal(raw string, logger *zap.Logger) models.Goal {
	if raw == "" {
		return models.GoalAll
	}
	goal := models.Goal(raw)
	if !goal.Valid() {
		logger.Warn("unknown stored goal, using default", zap.String("goal", raw))
		return models.GoalAll
	}
	return goal
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func validCartItem(item models.CartItem) bool {
	return item.ID != "" && !math.IsNaN(item.Price) && !math.IsInf(item.Price, 0)
}

func validOrder(order models.Order) bool {
	return order.ID != ""
}

func validResult(entry models.ResultEntry) bool {
	return entry.OrderID != ""
}
