package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
)

// Notification texts are plain markdown; the re-render pass edits them in
// place so readers see a live countdown without new messages being posted.

func renderStartNotification(rec *domain.TimerRecord, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s Поставка **%s** запущена\n", rec.Emoji, rec.ObjectName))
	sb.WriteString(fmt.Sprintf("⏰ Будет доступно через: **%s**\n", domain.FormatRemaining(rec.Remaining(now))))
	sb.WriteString(fmt.Sprintf("👤 Запустил: <@%s>", rec.StartedBy))
	return sb.String()
}

func renderWarningNotification(rec *domain.TimerRecord, subscriptionRoleID string, minutesLeft int) string {
	var sb strings.Builder
	if subscriptionRoleID != "" {
		sb.WriteString(fmt.Sprintf("-# <@&%s>\n", subscriptionRoleID))
	}
	sb.WriteString("⚠️ **Скоро будет доступна поставка!**\n")
	sb.WriteString(fmt.Sprintf("%s **%s** будет готов через **%d мин**!", rec.Emoji, rec.ObjectName, minutesLeft))
	return sb.String()
}

func renderReadyNotification(rec *domain.TimerRecord, subscriptionRoleID string) string {
	mention := "@everyone"
	if subscriptionRoleID != "" {
		mention = fmt.Sprintf("<@&%s>", subscriptionRoleID)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s **%s** готов к поставке!\n", mention, rec.Emoji, rec.ObjectName))
	sb.WriteString(fmt.Sprintf("👤 Запустил: %s\n", rec.StartedByName))
	sb.WriteString("✅ Статус: Готов к работе")
	return sb.String()
}

// renderControlSummary builds the control channel status message: every
// catalog object with its state, grouped by category, plus recent history.
func renderControlSummary(active map[string]*domain.TimerRecord, events []*domain.SupplyEvent, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("🚚 **Управление поставками**\n")

	for _, category := range domain.Categories() {
		sb.WriteString(fmt.Sprintf("\n**%s**\n", category))
		for _, obj := range domain.ObjectsInCategory(category) {
			rec, ok := active[obj.Key]
			if !ok {
				sb.WriteString(fmt.Sprintf("🟢 %s %s — готов к поставке\n", obj.Emoji, obj.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("⏳ %s %s — осталось **%s**, запустил %s\n",
				obj.Emoji, obj.Name, domain.FormatRemaining(rec.Remaining(now)), rec.StartedByName))
		}
	}

	if len(events) > 0 {
		sb.WriteString("\n📜 **Последние события**\n")
		for _, ev := range events {
			sb.WriteString(fmt.Sprintf("• [%s] %s — %s\n",
				ev.OccurredAt.Format("02.01 15:04"), ev.ObjectName, eventLabel(ev)))
		}
	}
	return sb.String()
}

func eventLabel(ev *domain.SupplyEvent) string {
	switch ev.Type {
	case domain.EventStarted:
		return fmt.Sprintf("запуск (%s)", ev.ActorName)
	case domain.EventWarning:
		return "предупреждение"
	case domain.EventReady:
		return "готов к поставке"
	case domain.EventCancelled:
		return fmt.Sprintf("отмена (%s)", ev.ActorName)
	default:
		return string(ev.Type)
	}
}
