package persona

// CollaborationMode is the role template used when personas share a session.
type CollaborationMode string

const (
	ModeSpecializedSupport CollaborationMode = "specialized_support"
	ModePeerReview         CollaborationMode = "peer_review"
)

// Role names in a collaboration.
const (
	RoleMainTutor  = "main_tutor"
	RoleSpecialist = "specialist"
	RolePresenter  = "presenter"
	RoleReviewer   = "reviewer"
)

// RoleAssignment binds a persona to a collaboration role.
type RoleAssignment struct {
	Role    string `json:"role"`
	Persona string `json:"persona"`
}

// Step is one step of a peer-review sequence.
type Step struct {
	Order    int    `json:"order"`
	Persona  string `json:"persona"`
	Activity string `json:"activity"`
}

// CollaborationPlan splits a session between personas.
type CollaborationPlan struct {
	Mode  CollaborationMode `json:"mode"`
	Roles []RoleAssignment  `json:"roles"`
	Steps []Step            `json:"steps,omitempty"`
}

// PersonaFor returns the persona assigned to role, or "".
func (p CollaborationPlan) PersonaFor(role string) string {
	for _, r := range p.Roles {
		if r.Role == role {
			return r.Persona
		}
	}
	return ""
}

// specializedSupport keeps main leading while specialist handles one goal.
func specializedSupport(main, specialist string) CollaborationPlan {
	return CollaborationPlan{
		Mode: ModeSpecializedSupport,
		Roles: []RoleAssignment{
			{Role: RoleMainTutor, Persona: main},
			{Role: RoleSpecialist, Persona: specialist},
		},
	}
}

// peerReview is the three-step present → review → reflect sequence.
func peerReview(presenter, reviewer string) CollaborationPlan {
	return CollaborationPlan{
		Mode: ModePeerReview,
		Roles: []RoleAssignment{
			{Role: RolePresenter, Persona: presenter},
			{Role: RoleReviewer, Persona: reviewer},
		},
		Steps: []Step{
			{Order: 1, Persona: presenter, Activity: "present"},
			{Order: 2, Persona: reviewer, Activity: "review"},
			{Order: 3, Persona: presenter, Activity: "reflect"},
		},
	}
}

func (p CollaborationPlan) clone() CollaborationPlan {
	out := p
	out.Roles = append([]RoleAssignment(nil), p.Roles...)
	if p.Steps != nil {
		out.Steps = append([]Step(nil), p.Steps...)
	}
	return out
}
