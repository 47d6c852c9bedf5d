package suggest

import "strings"

type keywordList struct {
	keywords []string
	items    []string
}

// Checked in order; the first list whose keyword occurs in the title wins.
var keywordLists = []keywordList{
	{[]string{"report"}, []string{
		"Break it down into sections",
		"Start with an outline of key points",
		"Gather necessary data first",
		"Set uninterrupted time blocks for writing",
	}},
	{[]string{"meeting"}, []string{
		"Prepare an agenda beforehand",
		"Send calendar invites with objectives",
		"Take notes during the meeting",
		"Follow up with action items",
	}},
	{[]string{"design"}, []string{
		"Start with low-fidelity wireframes",
		"Gather inspiration from similar projects",
		"Get early feedback on concepts",
		"Create a design system for consistency",
	}},
	{[]string{"code", "develop"}, []string{
		"Break feature into smaller tasks",
		"Write tests before implementation",
		"Use version control for changes",
		"Document your approach",
	}},
	{[]string{"email", "message"}, []string{
		"Draft key points first",
		"Keep it concise and focused",
		"Proofread before sending",
		"Use a clear subject line",
	}},
}

var genericList = []string{
	"Break the task into smaller steps",
	"Set a specific deadline",
	"Identify resources you'll need",
	"Remove distractions before starting",
}

// Fallback returns the keyword-based suggestions for title. It is deterministic
// and always returns four items.
func Fallback(title string) []string {
	lower := strings.ToLower(title)
	for _, l := range keywordLists {
		for _, kw := range l.keywords {
			if strings.Contains(lower, kw) {
				return append([]string(nil), l.items...)
			}
		}
	}
	return append([]string(nil), genericList...)
}
