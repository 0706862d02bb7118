package core

import (
	"testing"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.TaskStatus
		want     bool
	}{
		{models.StatusPreparing, models.StatusConnecting, true},
		{models.StatusConnecting, models.StatusMaterialPrep, true},
		{models.StatusMaterialPrep, models.StatusSampling, true},
		{models.StatusSampling, models.StatusPostProcessing, true},
		{models.StatusPostProcessing, models.StatusCompleted, true},

		// Any state may enter revision.
		{models.StatusPreparing, models.StatusRevision, true},
		{models.StatusSampling, models.StatusRevision, true},
		{models.StatusCompleted, models.StatusRevision, true},

		// Revision re-enters any pipeline state.
		{models.StatusRevision, models.StatusPreparing, true},
		{models.StatusRevision, models.StatusSampling, true},
		{models.StatusRevision, models.StatusPostProcessing, true},

		// No skipping stages, no moving backwards, no direct completion.
		{models.StatusPreparing, models.StatusSampling, false},
		{models.StatusPreparing, models.StatusCompleted, false},
		{models.StatusSampling, models.StatusConnecting, false},
		{models.StatusCompleted, models.StatusPreparing, false},
		{models.StatusRevision, models.StatusCompleted, false},
		{models.StatusSampling, models.StatusSampling, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
