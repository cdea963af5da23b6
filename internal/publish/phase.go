package publish

// Phase names a step of a submission. Phases are reported before each
// network call so a caller can render progress.
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseGenerate Phase = "generate"
	PhaseToken    Phase = "token"
	PhaseInitiate Phase = "initiate"
	PhaseTransfer Phase = "transfer"
	PhaseDone     Phase = "done"
)

func (p Phase) Label() string {
	switch p {
	case PhaseValidate:
		return "Validation"
	case PhaseGenerate:
		return "Generating details"
	case PhaseToken:
		return "Getting upload token"
	case PhaseInitiate:
		return "Starting upload"
	case PhaseTransfer:
		return "Uploading video"
	case PhaseDone:
		return "Done"
	default:
		return string(p)
	}
}
