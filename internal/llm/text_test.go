package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "PlainTextUnchanged",
			in:   "**Seed**: 50 kg\n\n- Urea: 200 kg",
			want: "**Seed**: 50 kg\n\n- Urea: 200 kg",
		},
		{
			name: "LessThanIsNotHTML",
			in:   "Keep soil pH < 7",
			want: "Keep soil pH < 7",
		},
		{
			name: "MarkdownWithInlineTagsUnchanged",
			in:   "## Needs\n- Urea 200 kg<br>\n- If pH <b 5,5 add lime\n  - N & P balanced",
			want: "## Needs\n- Urea 200 kg<br>\n- If pH <b 5,5 add lime\n  - N & P balanced",
		},
		{
			name: "Blocks",
			in:   "<p>Seed</p><ul><li>50 kg</li><li>Urea</li></ul>",
			want: "Seed\n\n- 50 kg\n- Urea",
		},
		{
			name: "InlineAndBreaks",
			in:   "<div><strong>Water</strong>: 5 mm/day<br>Weekly checks</div>",
			want: "Water: 5 mm/day\nWeekly checks",
		},
		{
			name: "ScriptDropped",
			in:   "<p>Harvest in 110 days</p><script>alert(1)</script>",
			want: "Harvest in 110 days",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
