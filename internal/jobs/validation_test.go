package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/professor/internal/core"
)

func validEvent() *core.ReviewEvent {
	return &core.ReviewEvent{
		RepoOwner:      "sevigo",
		RepoName:       "demo",
		RepoFullName:   "sevigo/demo",
		PRNumber:       1,
		InstallationID: 7,
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *core.ReviewEvent)
		wantErr string
	}{
		{name: "valid", mutate: func(*core.ReviewEvent) {}},
		{name: "missing owner", mutate: func(e *core.ReviewEvent) { e.RepoOwner = "" }, wantErr: "owner"},
		{name: "missing name", mutate: func(e *core.ReviewEvent) { e.RepoName = "" }, wantErr: "name"},
		{name: "missing full name", mutate: func(e *core.ReviewEvent) { e.RepoFullName = "" }, wantErr: "full name"},
		{name: "zero pr number", mutate: func(e *core.ReviewEvent) { e.PRNumber = 0 }, wantErr: "pull request number"},
		{name: "negative installation", mutate: func(e *core.ReviewEvent) { e.InstallationID = -1 }, wantErr: "installation ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mutate(event)
			err := validateEvent(event)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateEventNil(t *testing.T) {
	assert.ErrorContains(t, validateEvent(nil), "event cannot be nil")
}
