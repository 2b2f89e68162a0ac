package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLeadStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"first stage", "UNDER_DISCUSSION", true},
		{"last stage", "REFERRAL_RECEIVED", true},
		{"middle stage", "ADVANCE_RECEIVED", true},
		{"lowercase rejected", "under_discussion", false},
		{"empty", "", false},
		{"unknown", "CLOSED_WON", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidLeadStatus(tt.status))
		})
	}
}

func TestLeadStatusPipeline(t *testing.T) {
	assert.Len(t, LeadStatuses, 12)
	assert.Equal(t, InitialLeadStatus, LeadStatuses[0])

	seen := make(map[LeadStatus]bool)
	for _, s := range LeadStatuses {
		assert.False(t, seen[s], "duplicate stage %s", s)
		seen[s] = true
		assert.True(t, ValidLeadStatus(string(s)))
	}
}
