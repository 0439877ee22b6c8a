package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsprint/video-library-go/internal/models"
)

// capturingWriteBack stores the maps it was handed.
type capturingWriteBack struct {
	moduleVideos  map[string]interface{}
	aiVideos      map[string]interface{}
	aiSearchUsage map[string]interface{}
	err           error
}

func (c *capturingWriteBack) fn() WriteBack {
	return func(_ context.Context, moduleVideos, aiVideos, aiSearchUsage map[string]interface{}) error {
		c.moduleVideos = moduleVideos
		c.aiVideos = aiVideos
		c.aiSearchUsage = aiSearchUsage
		return c.err
	}
}

func TestPersist(t *testing.T) {
	wb := &capturingWriteBack{}

	state := models.ModuleVideoState{
		UserVideos:    []models.VideoEntry{userEntry("https://www.youtube.com/embed/aaaaaaaaaaa")},
		AISearchCount: 1,
	}

	ok := Persist(context.Background(), "c1-m1", state, models.UserVideoMaps{}, wb.fn())

	require.True(t, ok)
	assert.Equal(t, state.UserVideos, wb.moduleVideos["c1-m1"])
	assert.Equal(t, state.AIVideos, wb.aiVideos["c1-m1"])
	assert.Equal(t, 1, wb.aiSearchUsage["c1-m1"])
}

// Writing one module's state must leave every other module's entries
// exactly as loaded.
func TestPersist_OtherModulesUntouched(t *testing.T) {
	wb := &capturingWriteBack{}

	otherVideos := []interface{}{map[string]interface{}{"embedUrl": "https://www.youtube.com/embed/bbbbbbbbbbb"}}
	current := models.UserVideoMaps{
		ModuleVideos:  map[string]interface{}{"c1-m2": otherVideos},
		AIVideos:      map[string]interface{}{"c1-m2": []interface{}{}},
		AISearchUsage: map[string]interface{}{"c1-m2": float64(2)},
	}

	state := models.ModuleVideoState{
		UserVideos: []models.VideoEntry{userEntry("https://www.youtube.com/embed/aaaaaaaaaaa")},
	}

	ok := Persist(context.Background(), "c1-m1", state, current, wb.fn())

	require.True(t, ok)
	assert.Equal(t, otherVideos, wb.moduleVideos["c1-m2"])
	assert.Equal(t, float64(2), wb.aiSearchUsage["c1-m2"])
	assert.Equal(t, state.UserVideos, wb.moduleVideos["c1-m1"])
}

func TestPersist_TypedMapsNormalized(t *testing.T) {
	wb := &capturingWriteBack{}

	// Maps decoded into typed Go shapes rather than plain JSON objects.
	current := models.UserVideoMaps{
		ModuleVideos:  map[string][]models.VideoEntry{"c1-m2": {userEntry("https://www.youtube.com/embed/bbbbbbbbbbb")}},
		AIVideos:      map[string][]models.VideoEntry{},
		AISearchUsage: map[string]int{"c1-m2": 2},
	}

	ok := Persist(context.Background(), "c1-m1", models.ModuleVideoState{}, current, wb.fn())

	require.True(t, ok)
	require.Contains(t, wb.moduleVideos, "c1-m2")
	assert.Equal(t, 2, wb.aiSearchUsage["c1-m2"])
}

func TestPersist_WriteBackError(t *testing.T) {
	wb := &capturingWriteBack{err: errors.New("connection reset")}

	ok := Persist(context.Background(), "c1-m1", models.ModuleVideoState{}, models.UserVideoMaps{}, wb.fn())

	assert.False(t, ok)
}

func TestPersist_WriteBackPanic(t *testing.T) {
	panicking := func(_ context.Context, _, _, _ map[string]interface{}) error {
		panic("storage driver bug")
	}

	ok := Persist(context.Background(), "c1-m1", models.ModuleVideoState{}, models.UserVideoMaps{}, panicking)

	assert.False(t, ok)
}

func TestToPlainRecord(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  map[string]interface{}
	}{
		{
			name:  "nil",
			value: nil,
			want:  map[string]interface{}{},
		},
		{
			name:  "plain JSON object",
			value: map[string]interface{}{"c1-m1": "x"},
			want:  map[string]interface{}{"c1-m1": "x"},
		},
		{
			name:  "typed map",
			value: map[string]int{"c1-m1": 3},
			want:  map[string]interface{}{"c1-m1": 3},
		},
		{
			name: "internal keys dropped",
			value: map[string]interface{}{
				"c1-m1":  "x",
				"_id":    "bookkeeping",
				"$class": "bookkeeping",
				"":       "empty",
			},
			want: map[string]interface{}{"c1-m1": "x"},
		},
		{
			name:  "non-map value",
			value: "corrupted",
			want:  map[string]interface{}{},
		},
		{
			name:  "map with non-string keys",
			value: map[int]string{1: "x"},
			want:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toPlainRecord(tt.value))
		})
	}
}

func TestIsInternalKey(t *testing.T) {
	assert.True(t, isInternalKey(""))
	assert.True(t, isInternalKey("_id"))
	assert.True(t, isInternalKey("$type"))
	assert.False(t, isInternalKey("c1-m1"))
	assert.False(t, isInternalKey("course_1-module_1"))
}
