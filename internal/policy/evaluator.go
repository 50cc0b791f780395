package policy

import "github.com/crmkit/crm-authz/internal/domain"

// Evaluator is the single decision point for capability and delegation checks.
// Construct it with New.
type Evaluator struct {
	vocab Vocabulary
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithUrgentMode selects how the pipeline vocabulary treats "urgent" priorities.
func WithUrgentMode(mode UrgentMode) Option {
	return func(e *Evaluator) {
		e.vocab = NewVocabulary(mode)
	}
}

// New constructs an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{vocab: NewVocabulary(UrgentAsHighAlias)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary exposes the pipeline vocabulary the evaluator validates against.
func (e *Evaluator) Vocabulary() Vocabulary {
	return e.vocab
}

// Can reports whether user holds capability, by role default or explicit grant.
func (e *Evaluator) Can(user *domain.UserContext, capability domain.Capability) bool {
	if user == nil || !capability.Valid() {
		return false
	}
	return IsDefaultGranted(user.Role, capability) || user.HasPermission(capability)
}

// Capabilities lists every capability user holds, in declaration order.
func (e *Evaluator) Capabilities(user *domain.UserContext) []domain.Capability {
	var out []domain.Capability
	for _, c := range domain.AllCapabilities() {
		if e.Can(user, c) {
			out = append(out, c)
		}
	}
	return out
}

// CanManageUser reports whether actor may act on targetUserID. Org admins
// manage everyone; managers manage members of any team they manage.
func (e *Evaluator) CanManageUser(actor *domain.UserContext, targetUserID string, index *TeamIndex) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsOrgAdmin() {
		return true
	}
	if actor.Role != domain.RoleManager || targetUserID == "" || index == nil {
		return false
	}
	for _, teamID := range index.managedBy[actor.ID] {
		if index.IsMember(teamID, targetUserID) {
			return true
		}
	}
	return false
}

// CanAssignContactToUser reports whether actor may hand a contact to targetUserID.
func (e *Evaluator) CanAssignContactToUser(actor *domain.UserContext, targetUserID string, index *TeamIndex) bool {
	if actor == nil {
		return false
	}
	return actor.Role.IsOrgAdmin() ||
		(actor.Role == domain.RoleManager && e.CanManageUser(actor, targetUserID, index))
}

// CanAccessTeamData reports whether actor may read data scoped to teamID.
func (e *Evaluator) CanAccessTeamData(actor *domain.UserContext, teamID string, index *TeamIndex) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsOrgAdmin() {
		return true
	}
	if teamID == "" {
		return false
	}
	return index.IsManagerOf(teamID, actor.ID) ||
		index.IsMember(teamID, actor.ID) ||
		actor.ManagesTeam(teamID) ||
		actor.InTeam(teamID)
}

// CanManageTeam reports whether actor may change teamID's settings and roster.
func (e *Evaluator) CanManageTeam(actor *domain.UserContext, teamID string, index *TeamIndex) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsOrgAdmin() {
		return true
	}
	if actor.Role != domain.RoleManager || teamID == "" {
		return false
	}
	return index.IsManagerOf(teamID, actor.ID) || actor.ManagesTeam(teamID)
}
