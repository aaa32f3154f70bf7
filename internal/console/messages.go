package console

import (
	"github.com/abhisek/voxtutor/internal/orchestrator"
	"github.com/abhisek/voxtutor/internal/persona"
)

// sessionStartedMsg is sent when the coordination state has been created.
type sessionStartedMsg struct {
	State persona.SessionState
	Err   error
}

// turnDoneMsg carries the pipeline result for the latest learner turn.
type turnDoneMsg struct {
	Result *orchestrator.TurnResult
	Err    error
}

// planDoneMsg carries a planning decision.
type planDoneMsg struct {
	Result *orchestrator.PlanResult
	Err    error
}

// sessionFinishedMsg is sent once the session has been recorded.
type sessionFinishedMsg struct {
	Err error
}
