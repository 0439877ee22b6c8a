package library

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/pkg/logger"
	"go.uber.org/zap"
)

// WriteBack persists the three merged per-user maps. It is injected by the
// caller so the adapter has no storage dependency of its own.
type WriteBack func(ctx context.Context, moduleVideos, aiVideos, aiSearchUsage map[string]interface{}) error

// Persist merges the new state for one module key into the user's full
// video maps and hands the result to writeBack. Entries for every other
// module key are preserved exactly as loaded; only the three entries for
// moduleKey are overwritten. The maps may arrive either as decoded JSON
// objects or as typed Go maps; both shapes are normalized before merging.
//
// Persistence failure is a recoverable condition for the caller, so a
// writeBack error (or panic) is logged and reported as false rather than
// propagated.
func Persist(ctx context.Context, moduleKey string, state models.ModuleVideoState, current models.UserVideoMaps, writeBack WriteBack) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("write-back panicked",
				zap.String("moduleKey", moduleKey),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	moduleVideos := toPlainRecord(current.ModuleVideos)
	aiVideos := toPlainRecord(current.AIVideos)
	aiSearchUsage := toPlainRecord(current.AISearchUsage)

	moduleVideos[moduleKey] = state.UserVideos
	aiVideos[moduleKey] = state.AIVideos
	aiSearchUsage[moduleKey] = state.AISearchCount

	if err := writeBack(ctx, moduleVideos, aiVideos, aiSearchUsage); err != nil {
		logger.Log.Error("write-back failed",
			zap.String("moduleKey", moduleKey),
			zap.Error(err),
		)
		return false
	}

	return true
}

// toPlainRecord normalizes any string-keyed map value into one canonical
// associative form, dropping bookkeeping keys that can leak in from the
// storage layer. Non-map values and nil produce an empty record.
func toPlainRecord(value interface{}) map[string]interface{} {
	record := make(map[string]interface{})
	if value == nil {
		return record
	}

	if m, isPlain := value.(map[string]interface{}); isPlain {
		for k, v := range m {
			if isInternalKey(k) {
				continue
			}
			record[k] = v
		}
		return record
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		logger.Log.Warn("unexpected stored map shape, starting from empty",
			zap.String("type", fmt.Sprintf("%T", value)),
		)
		return record
	}

	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		if isInternalKey(k) {
			continue
		}
		record[k] = iter.Value().Interface()
	}

	return record
}

// isInternalKey reports whether a stored key is storage-layer bookkeeping
// rather than module data.
func isInternalKey(key string) bool {
	return key == "" || strings.HasPrefix(key, "_") || strings.HasPrefix(key, "$")
}
