package core

import "github.com/valter-silva-au/sockboard/pkg/models"

// pipelineStatuses are the states a task in revision may re-enter. The
// re-entry point is chosen by the operator, not fixed.
var pipelineStatuses = []models.TaskStatus{
	models.StatusPreparing,
	models.StatusConnecting,
	models.StatusMaterialPrep,
	models.StatusSampling,
	models.StatusPostProcessing,
}

// allowedTransitions encodes the sampling workflow:
//
//	preparing → connecting → material_prep → sampling → {post_processing | revision}
//	post_processing → {completed | revision}
//	completed → revision (rework reopens a finished item)
//	revision → any pipeline state
//
// There is no terminal state, and any state may enter revision.
var allowedTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.StatusPreparing:      {models.StatusConnecting, models.StatusRevision},
	models.StatusConnecting:     {models.StatusMaterialPrep, models.StatusRevision},
	models.StatusMaterialPrep:   {models.StatusSampling, models.StatusRevision},
	models.StatusSampling:       {models.StatusPostProcessing, models.StatusRevision},
	models.StatusPostProcessing: {models.StatusCompleted, models.StatusRevision},
	models.StatusCompleted:      {models.StatusRevision},
	models.StatusRevision:       pipelineStatuses,
}

// CanTransition reports whether the workflow allows moving a task from one
// status to another.
func CanTransition(from, to models.TaskStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
