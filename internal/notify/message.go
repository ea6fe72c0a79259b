package notify

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps/crm"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatMessage renders the alert for a reminder as Telegram HTML.
func FormatMessage(r crm.Reminder, clientName string, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Напоминание</b>\n\n")
	b.WriteString(html.EscapeString(r.Text))
	b.WriteString("\n\n")
	if clientName != "" {
		b.WriteString("👤 Клиент: ")
		b.WriteString(html.EscapeString(clientName))
		b.WriteString("\n")
	}
	b.WriteString("📅 ")
	b.WriteString(formatWhen(r, loc))
	return b.String()
}

func formatWhen(r crm.Reminder, loc *time.Location) string {
	at, err := crm.Combine(r.Date, r.Time, loc)
	if err != nil {
		return html.EscapeString(strings.TrimSpace(r.Date + " " + r.Time))
	}
	return strconv.Itoa(at.Day()) + " " + monthsGenitive[at.Month()-1] + " " +
		strconv.Itoa(at.Year()) + ", " + at.Format("15:04")
}
