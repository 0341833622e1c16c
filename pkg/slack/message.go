package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
	"github.com/vulnsentinel/vulnsentinel/pkg/notifier"
)

const maxBlockTextLength = 2900

var severityEmoji = map[string]string{
	"critical": ":red_circle:",
	"high":     ":large_orange_circle:",
	"medium":   ":large_yellow_circle:",
	"low":      ":white_circle:",
}

func vulnURL(clientVulnID, dashboardURL string) string {
	return fmt.Sprintf("%s/client-vulns/%s", dashboardURL, clientVulnID)
}

// BuildVulnerabilityMessage creates Block Kit blocks for one client-vuln
// notification (spec.md §4.8): project, library, severity, vuln type, and
// a dashboard link for the operator to act on.
func BuildVulnerabilityMessage(alert notifier.Alert) []goslack.Block {
	emoji := severityEmoji[alert.Severity]
	if emoji == "" {
		emoji = ":question:"
	}

	header := fmt.Sprintf("%s *%s severity* — `%s` is affected by a vulnerability in `%s`", emoji, alert.Severity, alert.ProjectName, alert.LibraryName)
	blocks := []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, header, false, false),
			nil, nil,
		),
	}

	var detail string
	if alert.VulnType != "" {
		detail += fmt.Sprintf("*Type:* %s\n", alert.VulnType)
	}
	if alert.AffectedVersions != "" {
		detail += fmt.Sprintf("*Affected versions:* %s\n", alert.AffectedVersions)
	}
	if alert.Summary != "" {
		detail += alert.Summary
	}
	if detail != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, truncateForSlack(detail), false, false),
			nil, nil,
		))
	}

	btn := goslack.NewButtonBlockElement("", "", goslack.NewTextBlockObject(goslack.PlainTextType, "View in Dashboard", false, false))
	btn.URL = vulnURL(alert.ClientVulnID, alert.DashboardURL)
	blocks = append(blocks, goslack.NewActionBlock("", btn))

	// Embed the client-vuln ID as plain text so FindMessageByFingerprint can
	// thread later status-change notifications onto this message.
	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("ref:%s", alert.ClientVulnID), false, false),
	))

	return blocks
}

func truncateForSlack(text string) string {
	runes := []rune(text)
	if len(runes) <= maxBlockTextLength {
		return text
	}
	return string(runes[:maxBlockTextLength]) +"\n\n_... (truncated — view full details in dashboard)_"
}
