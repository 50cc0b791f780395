package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crmkit/crm-authz/internal/domain"
)

func TestNormalize(t *testing.T) {
	vocab := NewVocabulary(UrgentAsHighAlias)
	tests := []struct {
		field     PipelineField
		raw       string
		wantValue string
		wantIndex int
	}{
		{FieldPriority, "HIGH", "high", 0},
		{FieldPriority, "bogus", "high", 0},
		{FieldPriority, " Low ", "low", 2},
		{FieldPriority, "", "high", 0},
		{FieldStage, "closed-won", "closed-won", 4},
		{FieldStage, "Closed Lost", "closed-lost", 5},
		{FieldStage, "unknown", "prospect", 0},
		{FieldLeadStatus, "Converted", "converted", 3},
		{FieldLeadStatus, "archived", "new", 0},
		{FieldInterestLevel, "warm", "warm", 1},
		{FieldInterestLevel, "lukewarm", "hot", 0},
		{PipelineField("color"), "red", "", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.raw, func(t *testing.T) {
			value, idx := vocab.Normalize(tt.field, tt.raw)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantIndex, idx)
		})
	}
}

func TestUrgentModes(t *testing.T) {
	alias := NewVocabulary(UrgentAsHighAlias)
	value, idx := alias.Normalize(FieldPriority, "Urgent")
	assert.Equal(t, "high", value)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Urgent", alias.Label(FieldPriority, "urgent"))
	assert.Equal(t, []string{"high", "medium", "low"}, alias.Values(FieldPriority))

	asValue := NewVocabulary(UrgentAsValue)
	value, idx = asValue.Normalize(FieldPriority, "URGENT")
	assert.Equal(t, "urgent", value)
	assert.Equal(t, 3, idx)
	value, idx = asValue.Normalize(FieldPriority, "bogus")
	assert.Equal(t, "high", value)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"high", "medium", "low", "urgent"}, asValue.Values(FieldPriority))
}

func TestParseUrgentMode(t *testing.T) {
	assert.Equal(t, UrgentAsValue, ParseUrgentMode("VALUE"))
	assert.Equal(t, UrgentAsHighAlias, ParseUrgentMode("alias"))
	assert.Equal(t, UrgentAsHighAlias, ParseUrgentMode(""))
	assert.Equal(t, UrgentAsHighAlias, NewVocabulary(UrgentMode("weird")).Mode())
}

func TestLabel(t *testing.T) {
	vocab := NewVocabulary(UrgentAsHighAlias)
	assert.Equal(t, "Closed Won", vocab.Label(FieldStage, "closed-won"))
	assert.Equal(t, "New", vocab.Label(FieldLeadStatus, "garbage"))
	assert.Equal(t, "", vocab.Label(PipelineField("color"), "red"))
}

func TestFieldEditRules(t *testing.T) {
	ev := New()
	agent := mustUser(t, domain.UserContextInput{ID: "a", Role: "agent"})
	viewer := mustUser(t, domain.UserContextInput{ID: "v", Role: "viewer"})
	grantedViewer := mustUser(t, domain.UserContextInput{ID: "v2", Role: "viewer", Permissions: []string{"edit_tickets"}})

	for _, field := range []PipelineField{FieldLeadStatus, FieldPriority, FieldStage, FieldInterestLevel} {
		assert.Truef(t, ev.CanEditField(agent, field), "agent edits %s", field)
		assert.Falsef(t, ev.CanEditField(viewer, field), "viewer edits %s", field)
	}
	assert.True(t, ev.CanEditField(grantedViewer, FieldStage))
	assert.False(t, ev.CanEditField(grantedViewer, FieldLeadStatus))
	assert.False(t, ev.CanEditField(agent, PipelineField("color")))
}

func TestCanTransitionRejectsUnknownTargets(t *testing.T) {
	ev := New()
	agent := mustUser(t, domain.UserContextInput{ID: "a", Role: "agent"})

	assert.True(t, ev.CanTransition(agent, FieldStage, "prospect", "Closed Won"))
	assert.True(t, ev.CanTransition(agent, FieldStage, "legacy-stage", "proposal"))
	assert.False(t, ev.CanTransition(agent, FieldStage, "prospect", "won"))
	assert.True(t, ev.CanTransition(agent, FieldPriority, "low", "urgent"))
	assert.False(t, ev.CanTransition(nil, FieldPriority, "low", "high"))

	strict := New(WithUrgentMode(UrgentAsValue))
	assert.True(t, strict.CanTransition(agent, FieldPriority, "low", "urgent"))
	assert.Equal(t, UrgentAsValue, strict.Vocabulary().Mode())
}

func TestFieldsAllHaveVocabularies(t *testing.T) {
	vocab := NewVocabulary(UrgentAsValue)
	for _, f := range Fields() {
		assert.NotEmpty(t, vocab.Values(f), f)
	}
}
