package crossref

import (
	"regexp"

	"github.com/nhle/teamflow/internal/model"
)

// taskRefPattern matches task mentions like "#12". The mark must not follow
// a word character or '&', so "issue#3" and "&#39;" are skipped.
var taskRefPattern = regexp.MustCompile(`(?:^|[^\w&#])#(\d+)\b`)

// ExtractTaskRefs extracts all task id mentions from text.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractTaskRefs(text string) []model.ID {
	matches := taskRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[model.ID]bool)
	var result []model.ID
	for _, m := range matches {
		id := model.ID(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// MatchTaskRefs resolves the mentions in text against tasks. Mentions of
// self and of tasks not in the list are dropped.
func MatchTaskRefs(self model.ID, text string, tasks []model.Task) []model.Task {
	refs := ExtractTaskRefs(text)
	if len(refs) == 0 || len(tasks) == 0 {
		return nil
	}

	byID := make(map[model.ID]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var matched []model.Task
	for _, id := range refs {
		if id == self {
			continue
		}
		if t, ok := byID[id]; ok {
			matched = append(matched, t)
		}
	}
	return matched
}
