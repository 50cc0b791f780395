package policy

import (
	"strings"

	"github.com/crmkit/crm-authz/internal/domain"
)

// PipelineField names one closed-vocabulary lead attribute.
type PipelineField string

const (
	FieldLeadStatus    PipelineField = "lead_status"
	FieldPriority      PipelineField = "priority"
	FieldStage         PipelineField = "stage"
	FieldInterestLevel PipelineField = "interest_level"
)

// UrgentMode selects how "urgent" priorities are interpreted.
type UrgentMode string

const (
	// UrgentAsHighAlias treats "urgent" as a display escalation of "high".
	UrgentAsHighAlias UrgentMode = "alias"
	// UrgentAsValue treats "urgent" as a fourth priority after "low".
	UrgentAsValue UrgentMode = "value"
)

// ParseUrgentMode maps a config value to a mode; anything unrecognized is the alias mode.
func ParseUrgentMode(raw string) UrgentMode {
	if UrgentMode(strings.ToLower(strings.TrimSpace(raw))) == UrgentAsValue {
		return UrgentAsValue
	}
	return UrgentAsHighAlias
}

const urgent = "urgent"

// Fields lists the pipeline fields in display order.
func Fields() []PipelineField {
	return []PipelineField{FieldLeadStatus, FieldPriority, FieldStage, FieldInterestLevel}
}

type term struct {
	value string
	label string
}

// Vocabulary validates pipeline values. Index 0 of every field is the fallback.
type Vocabulary struct {
	mode  UrgentMode
	terms map[PipelineField][]term
}

// NewVocabulary builds the closed enumerations for the given urgent mode.
func NewVocabulary(mode UrgentMode) Vocabulary {
	priorities := []term{{"high", "High"}, {"medium", "Medium"}, {"low", "Low"}}
	if mode == UrgentAsValue {
		priorities = append(priorities, term{urgent, "Urgent"})
	} else {
		mode = UrgentAsHighAlias
	}
	return Vocabulary{
		mode: mode,
		terms: map[PipelineField][]term{
			FieldLeadStatus: {
				{"new", "New"}, {"contacted", "Contacted"}, {"qualified", "Qualified"},
				{"converted", "Converted"}, {"closed", "Closed"},
			},
			FieldPriority: priorities,
			FieldStage: {
				{"prospect", "Prospect"}, {"qualified", "Qualified"}, {"proposal", "Proposal"},
				{"negotiation", "Negotiation"}, {"closed-won", "Closed Won"}, {"closed-lost", "Closed Lost"},
			},
			FieldInterestLevel: {
				{"hot", "Hot"}, {"warm", "Warm"}, {"cold", "Cold"},
			},
		},
	}
}

// Mode returns the urgent mode in effect.
func (v Vocabulary) Mode() UrgentMode {
	return v.mode
}

// Values lists the canonical values of field in selection order.
func (v Vocabulary) Values(field PipelineField) []string {
	terms := v.terms[field]
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.value
	}
	return out
}

// Lookup matches raw case-insensitively against the values and display labels of field.
func (v Vocabulary) Lookup(field PipelineField, raw string) (string, int, bool) {
	needle := strings.TrimSpace(raw)
	if needle == "" {
		return "", 0, false
	}
	terms := v.terms[field]
	for i, t := range terms {
		if strings.EqualFold(t.value, needle) || strings.EqualFold(t.label, needle) {
			return t.value, i, true
		}
	}
	if field == FieldPriority && v.mode == UrgentAsHighAlias && strings.EqualFold(needle, urgent) {
		return terms[0].value, 0, true
	}
	return "", 0, false
}

// Normalize returns the canonical value and selection index for raw. Unmatched
// values fall back to the first member of the enumeration; an unknown field
// yields ("", 0).
func (v Vocabulary) Normalize(field PipelineField, raw string) (string, int) {
	if value, idx, ok := v.Lookup(field, raw); ok {
		return value, idx
	}
	terms := v.terms[field]
	if len(terms) == 0 {
		return "", 0
	}
	return terms[0].value, 0
}

// Label returns the display label for raw. In alias mode a raw "urgent"
// priority keeps its own label even though it normalizes to "high".
func (v Vocabulary) Label(field PipelineField, raw string) string {
	if field == FieldPriority && strings.EqualFold(strings.TrimSpace(raw), urgent) {
		return "Urgent"
	}
	_, idx := v.Normalize(field, raw)
	terms := v.terms[field]
	if len(terms) == 0 {
		return ""
	}
	return terms[idx].label
}

var fieldEditCapability = map[PipelineField]domain.Capability{
	FieldLeadStatus:    domain.CapEditContacts,
	FieldInterestLevel: domain.CapEditContacts,
	FieldPriority:      domain.CapEditTickets,
	FieldStage:         domain.CapEditTickets,
}

// CanEditField reports whether user may change field on a lead.
func (e *Evaluator) CanEditField(user *domain.UserContext, field PipelineField) bool {
	capability, ok := fieldEditCapability[field]
	if !ok {
		return false
	}
	return e.Can(user, capability)
}

// CanTransition reports whether user may move field from one value to another.
// The target must be a member of the vocabulary; from is informational and may
// hold a legacy value.
func (e *Evaluator) CanTransition(user *domain.UserContext, field PipelineField, from, to string) bool {
	if !e.CanEditField(user, field) {
		return false
	}
	_, _, ok := e.vocab.Lookup(field, to)
	return ok
}
