package cli

import (
	"fmt"
	"strings"

	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

func onOff(b bool) string {
	if b {
		return badgeOn.Render("on")
	}
	return badgeOff.Render("off")
}

// formatStatus renders a status snapshot as an indented block.
func formatStatus(st protocol.Status) string {
	var b strings.Builder

	b.WriteString(styleBrand.Render("Taskbar") + "\n")
	if st.Taskbar.Found {
		edge := st.Taskbar.Edge
		if st.Taskbar.AutoHide {
			edge += " (auto-hide)"
		}
		fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Edge:   "), styleValue.Render(edge))
	} else {
		fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Edge:   "), styleWarning.Render("not found"))
	}
	fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Tint:   "), onOff(st.Taskbar.Enabled))
	fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Opacity:"), styleValue.Render(fmt.Sprintf("%d%%", st.Taskbar.Opacity)))

	b.WriteString(styleBrand.Render("Start menu") + "\n")
	var state string
	switch {
	case !st.Start.Enabled:
		state = styleHint.Render("not watched")
	case st.Start.IsOpen:
		state = styleSuccess.Render(fmt.Sprintf("open (%.0f%% confidence)", st.Start.Confidence*100))
	case st.Start.Detected:
		state = styleValue.Render("closed")
	default:
		state = styleHint.Render("not detected")
	}
	fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("State:  "), state)
	fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Tint:   "), onOff(st.Start.Enabled))
	fmt.Fprintf(&b, "  %s  %s\n", styleLabel.Render("Opacity:"), styleValue.Render(fmt.Sprintf("%d%%", st.Start.Opacity)))

	return b.String()
}

func formatError(e protocol.Error) string {
	if e.Code != "" {
		return styleError.Render(fmt.Sprintf("Error [%s]: %s", e.Code, e.Message))
	}
	return styleError.Render("Error: " + e.Message)
}
