package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"bare resource", NewKey("tasks"), "tasks"},
		{"empty values dropped", NewKey("tasks", "status", ""), "tasks"},
		{"single param", NewKey("tasks", "status", "DONE"), "tasks?status=DONE"},
		{
			"params sorted",
			Key{Resource: "tasks", Params: map[string]string{"status": "TODO", "assignee_id": "7"}},
			"tasks?assignee_id=7&status=TODO",
		},
		{"values escaped", NewKey("users", "q", "a b&c"), "users?q=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKeyString_OrderIndependent(t *testing.T) {
	a := NewKey("tasks", "status", "DONE", "limit", "10")
	b := NewKey("tasks", "limit", "10", "status", "DONE")
	assert.Equal(t, a.String(), b.String())
}
