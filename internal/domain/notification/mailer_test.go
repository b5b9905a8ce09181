package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBodyVariants(t *testing.T) {
	data := ViewData{
		RecipientName: "Lan",
		EventTitle:    "Opening ceremony",
		StartTime:     time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		variant  Kind
		contains string
	}{
		{KindApproved, "has been approved"},
		{KindChanged, "has been updated"},
		{KindReapproved, "re-approved after changes"},
		{KindReminder, "is coming up"},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			body, err := renderBody(tt.variant, data)
			require.NoError(t, err)
			assert.Contains(t, body, "Hello Lan")
			assert.Contains(t, body, tt.contains)
			assert.Contains(t, body, "2026-09-05 08:00 - 2026-09-05 10:00")
			assert.NotContains(t, body, "Changes:")
		})
	}
}

func TestRenderBodyChangeTable(t *testing.T) {
	data := ViewData{
		RecipientName: "Minh",
		EventTitle:    "Opening ceremony",
		StartTime:     time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
		Changes: []ChangeRow{
			{Field: "title", Old: "Opening ceremony", New: "Opening ceremony, hall B"},
			{Field: "start_time", Old: "2026-09-05 08:00:00", New: "2026-09-05 09:00:00"},
		},
	}

	body, err := renderBody(KindReapproved, data)
	require.NoError(t, err)
	assert.Contains(t, body, "Changes:")
	assert.Contains(t, body, "title: Opening ceremony -> Opening ceremony, hall B")
	assert.Contains(t, body, "start_time: 2026-09-05 08:00:00 -> 2026-09-05 09:00:00")
}
