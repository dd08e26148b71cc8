package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		var req CreateBookingRequest
		err := json.Unmarshal([]byte(`{"autoSelect":true,"startDate":"2026-01-16","endDate":"2026-01-20"}`), &req)
		require.NoError(t, err)
		require.NotNil(t, req.StartDate)
		require.NotNil(t, req.EndDate)
		assert.Equal(t, "2026-01-16", req.StartDate.String())
		assert.Equal(t, "2026-01-20", req.EndDate.String())

		out, err := json.Marshal(req)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"startDate":"2026-01-16"`)
	})

	t.Run("Missing bound stays nil", func(t *testing.T) {
		var req CreateBookingRequest
		err := json.Unmarshal([]byte(`{"startDate":"2026-01-16"}`), &req)
		require.NoError(t, err)
		assert.Nil(t, req.EndDate)
	})

	t.Run("Invalid format", func(t *testing.T) {
		var req CreateBookingRequest
		err := json.Unmarshal([]byte(`{"startDate":"16/01/2026"}`), &req)
		assert.Error(t, err)
	})
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"time.Time", time.Date(2026, 1, 16, 13, 45, 0, 0, time.UTC), "2026-01-16"},
		{"bytes", []byte("2026-01-20"), "2026-01-20"},
		{"timestamp string", "2026-01-21T00:00:00Z", "2026-01-21"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}
