package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/crm-authz/internal/api/dto"
	"github.com/crmkit/crm-authz/internal/auth"
	"github.com/crmkit/crm-authz/internal/policy"
	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

// PolicyHandler exposes evaluator decisions for the authenticated caller.
type PolicyHandler struct {
	evaluator *policy.Evaluator
}

// NewPolicyHandler constructs handler.
func NewPolicyHandler(evaluator *policy.Evaluator) *PolicyHandler {
	return &PolicyHandler{evaluator: evaluator}
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

// Capabilities GET /v1/me/capabilities.
func (h *PolicyHandler) Capabilities(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user := p.User
	return c.JSON(fiber.Map{"data": dto.CapabilitiesResponse{
		UserID:           user.ID,
		Role:             user.Role,
		OrganizationID:   user.OrganizationID,
		Capabilities:     h.evaluator.Capabilities(user),
		TeamIDs:          sortedKeys(user.TeamIDs),
		ManagedTeamIDs:   sortedKeys(user.ManagedTeamIDs),
		PrimaryDashboard: h.evaluator.PrimaryDashboardFor(user),
	}})
}

// Dashboard GET /v1/me/dashboard.
func (h *PolicyHandler) Dashboard(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.evaluator.DashboardFor(p.User)})
}

// Scope GET /v1/me/scope.
func (h *PolicyHandler) Scope(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.evaluator.AccessScopeFor(p.User)})
}

// CanManageUser GET /v1/users/:user_id/manageable.
func (h *PolicyHandler) CanManageUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	target := c.Params("user_id")
	return c.JSON(fiber.Map{"data": dto.UserDecisionResponse{
		TargetUserID: target,
		Allowed:      h.evaluator.CanManageUser(p.User, target, p.Teams),
	}})
}

// CanAssign GET /v1/users/:user_id/assignable.
func (h *PolicyHandler) CanAssign(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	target := c.Params("user_id")
	return c.JSON(fiber.Map{"data": dto.UserDecisionResponse{
		TargetUserID: target,
		Allowed:      h.evaluator.CanAssignContactToUser(p.User, target, p.Teams),
	}})
}

// TeamAccess GET /v1/teams/:team_id/access.
func (h *PolicyHandler) TeamAccess(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	teamID := c.Params("team_id")
	return c.JSON(fiber.Map{"data": dto.TeamAccessResponse{
		TeamID:        teamID,
		CanAccessData: h.evaluator.CanAccessTeamData(p.User, teamID, p.Teams),
		CanManage:     h.evaluator.CanManageTeam(p.User, teamID, p.Teams),
	}})
}

// TeamMembers GET /v1/teams/:team_id/members. Routed behind team access enforcement.
func (h *PolicyHandler) TeamMembers(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	teamID := c.Params("team_id")
	return c.JSON(fiber.Map{"data": dto.TeamMembersResponse{
		TeamID:    teamID,
		MemberIDs: p.Teams.MembersOf(teamID),
	}})
}

// Vocabulary GET /v1/pipeline/vocabulary.
func (h *PolicyHandler) Vocabulary(c *fiber.Ctx) error {
	vocab := h.evaluator.Vocabulary()
	resp := dto.VocabularyResponse{UrgentMode: string(vocab.Mode())}
	for _, field := range policy.Fields() {
		values := vocab.Values(field)
		labels := make([]string, len(values))
		for i, v := range values {
			labels[i] = vocab.Label(field, v)
		}
		resp.Fields = append(resp.Fields, dto.VocabularyField{Field: string(field), Values: values, Labels: labels})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Normalize POST /v1/pipeline/normalize.
func (h *PolicyHandler) Normalize(c *fiber.Ctx) error {
	var req dto.NormalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	field, err := parseField(req.Field)
	if err != nil {
		return err
	}
	vocab := h.evaluator.Vocabulary()
	_, _, known := vocab.Lookup(field, req.Value)
	value, idx := vocab.Normalize(field, req.Value)
	return c.JSON(fiber.Map{"data": dto.NormalizeResponse{
		Field: req.Field,
		Value: value,
		Index: idx,
		Label: vocab.Label(field, req.Value),
		Known: known,
	}})
}

// Transition POST /v1/pipeline/transition.
func (h *PolicyHandler) Transition(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	field, err := parseField(req.Field)
	if err != nil {
		return err
	}
	if req.To == "" {
		return apperrors.NewValidationError("to required", nil)
	}
	return c.JSON(fiber.Map{"data": dto.TransitionResponse{
		Field:   req.Field,
		From:    req.From,
		To:      req.To,
		Allowed: h.evaluator.CanTransition(p.User, field, req.From, req.To),
	}})
}

func parseField(raw string) (policy.PipelineField, error) {
	for _, f := range policy.Fields() {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", apperrors.NewValidationError("unknown pipeline field", map[string]any{"field": raw})
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
