package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseTaskSort(t *testing.T) {
	tests := []struct {
		raw  string
		want TaskSort
	}{
		{"", DefaultTaskSort},
		{"-createdAt", TaskSort{Field: SortByCreatedAt, Desc: true}},
		{"createdAt", TaskSort{Field: SortByCreatedAt}},
		{"title", TaskSort{Field: SortByTitle}},
		{"-dueDate", TaskSort{Field: SortByDueDate, Desc: true}},
		{" priority ", TaskSort{Field: SortByPriority}},
		{"password", DefaultTaskSort},
		{"-", DefaultTaskSort},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTaskSort(tt.raw))
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(uuid.NewString()))
	assert.ErrorIs(t, ValidateID("42"), ErrInvalidID)
	assert.ErrorIs(t, ValidateID(""), ErrInvalidID)
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueStrings([]string{"a", "", "b", "a"}))
	assert.Empty(t, uniqueStrings(nil))
}
