package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/teamflow/internal/model"
)

func TestExtractTaskRefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.ID
	}{
		{name: "none", text: "nothing to see", want: nil},
		{name: "single", text: "blocked by #12", want: []model.ID{"12"}},
		{name: "start of text", text: "#3 first", want: []model.ID{"3"}},
		{name: "dedup keeps order", text: "#5, #2 and again #5", want: []model.ID{"5", "2"}},
		{name: "parenthesised", text: "see (#7).", want: []model.ID{"7"}},
		{name: "glued to word", text: "issue#3", want: nil},
		{name: "html entity", text: "it&#39;s", want: nil},
		{name: "markdown heading", text: "## 4 steps", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTaskRefs(tt.text))
		})
	}
}

func TestMatchTaskRefs(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "Write docs"},
		{ID: "2", Title: "Fix login"},
		{ID: "3", Title: "Ship v1"},
	}

	got := MatchTaskRefs("1", "needs #3 and #2, not #1 or #99", tasks)
	if assert.Len(t, got, 2) {
		assert.Equal(t, model.ID("3"), got[0].ID)
		assert.Equal(t, model.ID("2"), got[1].ID)
	}

	assert.Nil(t, MatchTaskRefs("1", "no refs", tasks))
	assert.Nil(t, MatchTaskRefs("1", "#2", nil))
}
