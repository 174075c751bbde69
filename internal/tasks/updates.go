package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadSnapshots Phase = iota
	LoadGroup
	SaveGroup
	ExportGroup
	GroupFailed
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadSnapshots:
		return "load_snapshots"
	case LoadGroup:
		return "load_group"
	case SaveGroup:
		return "save_group"
	case ExportGroup:
		return "export_group"
	case GroupFailed:
		return "group_failed"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func loadSnapshotsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSnapshots,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up annotations for %d group(s)...", total),
	}
}

func loadGroupUpdate(step, total int, key string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadGroup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading group %s...", key),
	}
}

func saveGroupUpdate(step, total int, res GroupResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveGroup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saved %s (%d annotation(s), %d file(s))", res.GroupKey, res.Annotations, len(res.Files)),
		Data:    res,
	}
}

func exportGroupUpdate(step, total int, res GroupResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportGroup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %s (%d annotation(s))", res.GroupKey, res.Annotations),
		Data:    res,
	}
}

func groupFailedUpdate(step, total int, res GroupResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GroupFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed %s: %v", res.GroupKey, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}
