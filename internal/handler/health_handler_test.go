package handler

import (
	"testing"
)

func TestNewHealthHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	if handler == nil {
		t.Fatal("NewHealthHandler() returned nil")
	}
}
