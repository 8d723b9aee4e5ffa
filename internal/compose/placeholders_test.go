package compose

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dental-report-engine/internal/rules"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestResolveSourceOrder(t *testing.T) {
	r := NewResolver(testLogger(), rules.Builtin())

	tests := []struct {
		name   string
		text   string
		values Values
		want   string
	}{
		{
			name:   "metadata via remapped key",
			text:   "Dear {{PATIENT_NAME}},",
			values: Values{Metadata: map[string]string{"name": "Anna"}},
			want:   "Dear Anna,",
		},
		{
			name: "metadata beats calculated",
			text: "{{PATIENT_NAME}}",
			values: Values{
				Metadata:   map[string]string{"name": "Anna"},
				Calculated: map[string]string{"PATIENT_NAME": "calc"},
			},
			want: "Anna",
		},
		{
			name:   "calculated beats custom",
			text:   "{{TOOTH_COUNT}}",
			values: Values{Calculated: map[string]string{"TOOTH_COUNT": "one tooth"}, Custom: map[string]string{"TOOTH_COUNT": "custom"}},
			want:   "one tooth",
		},
		{
			name:   "custom beats fallback",
			text:   "{{TIMELINE_ESTIMATE}}",
			values: Values{Custom: map[string]string{"TIMELINE_ESTIMATE": "six weeks"}},
			want:   "six weeks",
		},
		{
			name:   "definition fallback",
			text:   "Dear {{PATIENT_NAME}},",
			values: Values{},
			want:   "Dear there,",
		},
		{
			name:   "global default",
			text:   "at {{CLINIC_NAME}}",
			values: Values{},
			want:   "at our practice",
		},
		{
			name:   "empty metadata value falls through",
			text:   "{{PATIENT_NAME}}",
			values: Values{Metadata: map[string]string{"name": ""}},
			want:   "there",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.text, tt.values)
			assert.Equal(t, tt.want, res.Text)
			assert.Empty(t, res.Unresolved)
		})
	}
}

func TestResolveUnresolvedTokensStayVerbatim(t *testing.T) {
	r := NewResolver(testLogger(), rules.Builtin())

	res := r.Resolve("{{TOOTH_COUNT}} and {{NO_SUCH_TOKEN}} and {{TOOTH_COUNT}}", Values{})

	assert.Equal(t, "{{TOOTH_COUNT}} and {{NO_SUCH_TOKEN}} and {{TOOTH_COUNT}}", res.Text)
	assert.Equal(t, 0, res.Resolved)
	// deduplicated and sorted
	assert.Equal(t, []string{"NO_SUCH_TOKEN", "TOOTH_COUNT"}, res.Unresolved)
}

func TestResolveIgnoresNonTokenBraces(t *testing.T) {
	r := NewResolver(testLogger(), rules.Builtin())

	res := r.Resolve("{{lower_case}} {PATIENT_NAME} {{ SPACED }}", Values{})

	assert.Equal(t, "{{lower_case}} {PATIENT_NAME} {{ SPACED }}", res.Text)
	assert.Empty(t, res.Unresolved)
}

func TestResolveCountsResolutions(t *testing.T) {
	r := NewResolver(testLogger(), rules.Builtin())

	res := r.Resolve("{{PATIENT_NAME}} at {{CLINIC_NAME}}, {{PATIENT_NAME}}",
		Values{Metadata: map[string]string{"name": "Anna"}})

	assert.Equal(t, "Anna at our practice, Anna", res.Text)
	assert.Equal(t, 3, res.Resolved)
}
