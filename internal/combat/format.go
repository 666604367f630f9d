package combat

import (
	"fmt"
	"strings"
)

// codeFormat wraps plain effect text in inline code. Text that already
// carries its own formatting is left alone.
func codeFormat(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch {
		case msg == "":
		case strings.Contains(msg, "`"):
			out = append(out, msg)
		default:
			out = append(out, "`"+msg+"`")
		}
	}
	return out
}

func roundHeader(round int) string {
	return fmt.Sprintf("**Round %d Begins!**\nAction stars refreshed for all characters!", round)
}

func turnHeader(name string, skipped bool) string {
	if skipped {
		return fmt.Sprintf("⏭️ **%s's Turn**\n╰─ Turn skipped", name)
	}
	return fmt.Sprintf("🎯 **%s's Turn**", name)
}

func effectUpdate(messages []string) []string {
	formatted := codeFormat(messages)
	if len(formatted) == 0 {
		return nil
	}
	return append([]string{"**Effects Update**"}, formatted...)
}

func orderListing(order []string, current int) string {
	lines := make([]string, len(order))
	for i, name := range order {
		if i == current {
			lines[i] = fmt.Sprintf("▶️ %s (Current)", name)
		} else {
			lines[i] = "⬜ " + name
		}
	}
	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

func initiativeListing(rolls []Roll) string {
	lines := make([]string, len(rolls))
	for i, roll := range rolls {
		lines[i] = fmt.Sprintf("%d. %s (%d)", i+1, roll.Name, roll.Total)
	}
	return "**Initiative Order**\n```\n" + strings.Join(lines, "\n") + "\n```"
}
