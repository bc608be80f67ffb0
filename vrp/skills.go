package vrp

// SkillsConstraintModule rejects a job/route pairing when the job requires
// a skill the actor doesn't have. Hard-route-only: there is no activity-
// level or soft cost, and no state to maintain between accept passes.
type SkillsConstraintModule struct {
	code ErrorCode
}

// NewSkillsConstraintModule builds the module with a fresh violation code.
func NewSkillsConstraintModule() *SkillsConstraintModule {
	return &SkillsConstraintModule{code: NewViolationCode()}
}

func (m *SkillsConstraintModule) StateKeys() []StateKey { return nil }

func (m *SkillsConstraintModule) AcceptRouteState(_ *RouteContext)       {}
func (m *SkillsConstraintModule) AcceptSolutionState(_ *InsertionContext) {}

// EvaluateJob implements HardRouteConstraint.
func (m *SkillsConstraintModule) EvaluateJob(rc *RouteContext, job Job) *Violation {
	required := job.Skills()
	if len(required) == 0 {
		return nil
	}
	has := make(map[string]bool, len(rc.Route.Actor.Skills))
	for _, s := range rc.Route.Actor.Skills {
		has[s] = true
	}
	for _, s := range required {
		if !has[s] {
			return &Violation{Code: m.code, Stopped: true}
		}
	}
	return nil
}
