package types

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

// OutlineItem is one planned lesson stub inside a course's outline plan.
// The JSON keys match the planner agent's output contract verbatim so the
// stored plan round-trips without translation.
type OutlineItem struct {
	Order              int    `json:"order"`
	PlannedTitle       string `json:"planned_title"`
	PlannedDescription string `json:"planned_description,omitempty"`
	HasQuiz            bool   `json:"has_quiz,omitempty"`
}

// DecodeOutlinePlan parses the jsonb outline column back into ordered items.
// Items are sorted by their order index regardless of stored order.
func DecodeOutlinePlan(js datatypes.JSON) ([]OutlineItem, error) {
	if len(js) == 0 {
		return nil, nil
	}
	var items []OutlineItem
	if err := json.Unmarshal(js, &items); err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items, nil
}

func EncodeOutlinePlan(items []OutlineItem) datatypes.JSON {
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

// DecodeExternalLinks parses a lesson's external_links jsonb column.
func DecodeExternalLinks(js datatypes.JSON) []string {
	if len(js) == 0 {
		return []string{}
	}
	var links []string
	if err := json.Unmarshal(js, &links); err != nil {
		return []string{}
	}
	return links
}

func EncodeExternalLinks(links []string) datatypes.JSON {
	if links == nil {
		links = []string{}
	}
	b, _ := json.Marshal(links)
	return datatypes.JSON(b)
}
