package tui

import (
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/joy"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8"))
	activeTab   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("13"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// JoyMarkdown renders a day's tasks as a markdown checklist.
func JoyMarkdown(v joy.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Joy challenges for %s\n\n", v.DateKey)
	if len(v.Items) == 0 {
		b.WriteString("_No challenges yet._\n")
	}
	for _, t := range v.Items {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, t.Title)
	}
	if v.Message != "" {
		fmt.Fprintf(&b, "\n> %s\n", v.Message)
	}
	return b.String()
}

// RenderMarkdown renders md for the terminal, falling back to the raw text.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func renderTabs(active Screen) string {
	tabs := []string{}
	for _, s := range []Screen{ScreenJoy, ScreenFeed} {
		style := tabStyle
		if s == active {
			style = activeTab
		}
		tabs = append(tabs, style.Render(string(s)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderJoy(v joy.View, cursor int) string {
	if v.State == joy.Error && len(v.Items) == 0 {
		return errorStyle.Render("Couldn't load today's challenges: " + v.Message)
	}
	if len(v.Items) == 0 {
		return footerStyle.Render("Nothing here yet.")
	}
	lines := make([]string, 0, len(v.Items))
	for i, t := range v.Items {
		box := "[ ]"
		title := t.Title
		if t.Done {
			box = "[x]"
			title = doneStyle.Render(title)
		}
		line := fmt.Sprintf("  %s %s", box, title)
		if i == cursor {
			line = cursorStyle.Render("> ") + fmt.Sprintf("%s %s", box, title)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderFeed(posts []types.Post, user *types.User, cursor int) string {
	if len(posts) == 0 {
		return footerStyle.Render("No posts yet.")
	}
	lines := make([]string, 0, len(posts))
	for i, p := range posts {
		joined := ""
		if user != nil && p.HasParticipant(user.UID) {
			joined = statusStyle.Render(" (joined)")
		}
		detail := p.AuthorName
		if p.Location != "" {
			detail += " @ " + p.Location
		}
		line := fmt.Sprintf("%s  %s  [%d going]%s", p.Text, footerStyle.Render(detail), len(p.Participants), joined)
		if i == cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
