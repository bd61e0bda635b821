package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"VixPull/internal/model"

	"github.com/dustin/go-humanize"
)

// FormatRunSummary formats a finished pull into a Telegram message.
func FormatRunSummary(s model.RunSummary) string {
	var b strings.Builder

	if s.HaltReason != "" {
		b.WriteString("⛔ <b>VIX pull halted</b>\n\n")
	} else {
		b.WriteString("✅ <b>VIX pull finished</b>\n\n")
	}
	b.WriteString(fmt.Sprintf("Run: <code>%s</code>\n", html.EscapeString(s.RunID)))
	b.WriteString(fmt.Sprintf("Range: %s .. %s\n", s.Start.Format(model.DateLayout), s.Stop.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Records: %s / %s days", humanize.Comma(int64(s.Records)), humanize.Comma(int64(s.BusinessDays))))
	if s.ErrorRows > 0 {
		b.WriteString(fmt.Sprintf(" (%d error rows)", s.ErrorRows))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", s.Elapsed.Round(time.Second)))

	if s.Written {
		b.WriteString(fmt.Sprintf("Output: <code>%s</code>\n", html.EscapeString(s.Output)))
	} else {
		b.WriteString("Output: not written\n")
	}
	if s.HaltReason != "" {
		b.WriteString(fmt.Sprintf("\nReason: %s\n", html.EscapeString(s.HaltReason)))
	}
	return b.String()
}

// FormatHelp lists the chat commands understood in schedule mode.
func FormatHelp() string {
	return "Commands:\n• /status last run\n• /pull run a pull now"
}
