package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

func issueByCode(issues []domain.StructuralIssue, code string) *domain.StructuralIssue {
	for i := range issues {
		if issues[i].Code == code {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateCompleteReport(t *testing.T) {
	v := NewStructureValidator(testLogger(), rules.Builtin())

	assert.Empty(t, v.Validate(cleanReport("balanced_warm")))
}

func TestValidateMissingRequiredSection(t *testing.T) {
	v := NewStructureValidator(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections = report.Sections[1:] // drop the greeting

	issues := v.Validate(report)
	issue := issueByCode(issues, CodeMissingRequiredSection)
	require.NotNil(t, issue)
	assert.Equal(t, 1, issue.Section)
	assert.True(t, issue.Blocking)
}

func TestValidateMissingOptionalSectionIsFine(t *testing.T) {
	v := NewStructureValidator(testLogger(), rules.Builtin())

	// sections 5 to 9 are optional and absent from the clean report already
	assert.Empty(t, v.Validate(cleanReport("balanced_warm")))
}

func TestValidateSuppressedRequiredSection(t *testing.T) {
	rs := rules.Builtin()
	// mark the suppressible costs section required to exercise the branch
	for i := range rs.Sections {
		if rs.Sections[i].Number == 7 {
			rs.Sections[i].Required = true
		}
	}
	v := NewStructureValidator(testLogger(), rs)

	report := cleanReport("balanced_warm")
	report.SuppressedSections = []int{7}

	issues := v.Validate(report)
	issue := issueByCode(issues, CodeSuppressedRequired)
	require.NotNil(t, issue)
	assert.Equal(t, 7, issue.Section)
	assert.False(t, issue.Blocking)
	assert.Nil(t, issueByCode(issues, CodeMissingRequiredSection))
}

func TestValidateEmptyAndDegradedSections(t *testing.T) {
	v := NewStructureValidator(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.TotalWordCount -= report.Sections[2].WordCount
	report.Sections[2].Text = ""
	report.Sections[2].WordCount = 0
	report.Sections[3].Degraded = true
	report.TotalWordCount += 20 // keep the report above the word floor

	issues := v.Validate(report)

	empty := issueByCode(issues, CodeEmptySection)
	require.NotNil(t, empty)
	assert.Equal(t, 3, empty.Section)
	assert.False(t, empty.Blocking)

	degraded := issueByCode(issues, CodeDegradedSection)
	require.NotNil(t, degraded)
	assert.Equal(t, 4, degraded.Section)
	assert.False(t, degraded.Blocking)
}

func TestValidateUnresolvedPlaceholders(t *testing.T) {
	t.Run("warning by default", func(t *testing.T) {
		v := NewStructureValidator(testLogger(), rules.Builtin())

		report := cleanReport("balanced_warm")
		report.PlaceholdersUnresolved = []string{"TOOTH_COUNT"}

		issue := issueByCode(v.Validate(report), CodeUnresolvedPlaceholder)
		require.NotNil(t, issue)
		assert.False(t, issue.Blocking)
		assert.Contains(t, issue.Message, "TOOTH_COUNT")
	})

	t.Run("blocking when configured", func(t *testing.T) {
		rs := rules.Builtin()
		rs.QA.BlockOnUnresolvedPlaceholders = true
		v := NewStructureValidator(testLogger(), rs)

		report := cleanReport("balanced_warm")
		report.PlaceholdersUnresolved = []string{"TOOTH_COUNT"}

		issue := issueByCode(v.Validate(report), CodeUnresolvedPlaceholder)
		require.NotNil(t, issue)
		assert.True(t, issue.Blocking)
	})
}

func TestValidateReportTooShort(t *testing.T) {
	v := NewStructureValidator(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.TotalWordCount = 20

	issue := issueByCode(v.Validate(report), CodeReportTooShort)
	require.NotNil(t, issue)
	assert.False(t, issue.Blocking)
}
