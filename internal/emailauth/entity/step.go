package entity

// StepStatus is the outcome of one step invocation.
type StepStatus int

const (
	// StepChallenge means a page was rendered and the user must act.
	StepChallenge StepStatus = iota
	// StepSuccess means the user proved control of the email address.
	StepSuccess
	// StepAbort means the user cancelled and the login must restart.
	StepAbort
)

func (s StepStatus) String() string {
	switch s {
	case StepSuccess:
		return "success"
	case StepAbort:
		return "abort"
	default:
		return "challenge"
	}
}

// StepResult carries the rendered page for StepChallenge.
type StepResult struct {
	Status StepStatus
	Page   []byte
}
