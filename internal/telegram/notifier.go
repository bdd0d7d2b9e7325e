package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rusneurosoft/neuro-connector/internal/flow"
)

// GroupNotifier posts lead and support notifications into the internal
// support group. It implements flow.Notifier.
type GroupNotifier struct {
	bot     *Client
	groupID int64
	log     zerolog.Logger
}

func NewGroupNotifier(bot *Client, groupID int64, log zerolog.Logger) *GroupNotifier {
	return &GroupNotifier{bot: bot, groupID: groupID, log: log}
}

var roleLabels = map[flow.Role]string{
	flow.RoleEntrepreneur: "🚀 Предприниматель",
	flow.RoleStartupper:   "💡 Стартапер",
	flow.RoleSpecialist:   "💻 Специалист",
	flow.RoleResearcher:   "📈 Исследователь",
}

func roleLabel(role flow.Role) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	return "❓ Не определена"
}

func (n *GroupNotifier) NewLead(ctx context.Context, lead flow.Lead) error {
	var b strings.Builder
	b.WriteString("🎉 **НОВАЯ ЗАЯВКА!**\n\n")
	b.WriteString(userBlock(lead.UserID, lead.FirstName, lead.Contact, lead.Role))
	b.WriteString(surveyBlock(lead.Role, lead.Answers))
	b.WriteString(contactBlock(lead.Contact))
	b.WriteString(dialogLink(lead.UserID))

	err := n.bot.SendMessage(ctx, n.groupID, b.String(), nil)
	if err == nil {
		n.log.Info().Int64("user_id", lead.UserID).Str("role", string(lead.Role)).Msg("lead notification sent")
	}
	return err
}

func (n *GroupNotifier) CostCalculation(ctx context.Context, lead flow.Lead) error {
	var b strings.Builder
	b.WriteString("💰 **ЗАПРОС РАСЧЕТА СТОИМОСТИ**\n\n")
	b.WriteString(userBlock(lead.UserID, lead.FirstName, lead.Contact, lead.Role))
	b.WriteString(surveyBlock(lead.Role, lead.Answers))
	b.WriteString(contactBlock(lead.Contact))
	b.WriteString("⚡️ **Требуется:** связаться для уточнения деталей проекта\n\n")
	b.WriteString(dialogLink(lead.UserID))

	return n.bot.SendMessage(ctx, n.groupID, b.String(), nil)
}

func (n *GroupNotifier) SupportRequest(ctx context.Context, req flow.SupportRequest) error {
	username := req.Username
	if username == "" {
		username = "не указан"
	} else {
		username = "@" + username
	}

	var b strings.Builder
	b.WriteString("🆘 **НОВОЕ ОБРАЩЕНИЕ В ПОДДЕРЖКУ**\n\n")
	b.WriteString("👤 **Пользователь:**\n")
	fmt.Fprintf(&b, "├ ID: `%d`\n", req.UserID)
	fmt.Fprintf(&b, "├ Имя: %s\n", orDash(req.FirstName))
	fmt.Fprintf(&b, "├ Username: %s\n", username)
	fmt.Fprintf(&b, "└ Роль: %s\n\n", roleLabel(req.Role))
	fmt.Fprintf(&b, "💬 **Сообщение:**\n%s\n\n", req.Message)
	b.WriteString(contactBlock(req.Contact))
	b.WriteString(dialogLink(req.UserID))

	return n.bot.SendMessage(ctx, n.groupID, b.String(), nil)
}

// ----- formatting -----

func userBlock(userID int64, firstName string, contact *flow.ContactInfo, role flow.Role) string {
	username := "не указан"
	if contact != nil && contact.Username != "" {
		username = "@" + contact.Username
	}
	if firstName == "" && contact != nil {
		firstName = contact.FirstName
	}

	var b strings.Builder
	b.WriteString("👤 **Пользователь:**\n")
	fmt.Fprintf(&b, "├ ID: `%d`\n", userID)
	fmt.Fprintf(&b, "├ Имя: %s\n", orDash(firstName))
	fmt.Fprintf(&b, "├ Username: %s\n", username)
	fmt.Fprintf(&b, "└ Роль: %s\n\n", roleLabel(role))
	return b.String()
}

func surveyBlock(role flow.Role, answers map[string]string) string {
	var lines []string
	switch role {
	case flow.RoleEntrepreneur:
		lines = []string{
			"├ Процесс-боль: " + orDash(answers["process_pain"]),
			"├ Потери времени: " + orDash(answers["time_lost"]) + " ч/нед",
			"└ Страдающий отдел: " + orDash(answers["department_affected"]),
		}
	case flow.RoleStartupper:
		lines = []string{
			"├ Проблема: " + orDash(answers["problem_solved"]),
			"├ Этап: " + orDash(answers["current_stage"]),
			"└ Барьер: " + orDash(answers["main_barrier"]),
		}
	case flow.RoleSpecialist:
		lines = []string{
			"├ Навык: " + orDash(answers["main_skill"]),
			"├ Интересы: " + orDash(answers["project_interests"]),
			"└ Формат: " + orDash(answers["work_format"]),
		}
	case flow.RoleResearcher:
		lines = []string{"└ Интересовался: " + orDash(answers["interest"])}
	default:
		return ""
	}
	return "📋 **Данные анкеты:**\n" + strings.Join(lines, "\n") + "\n\n"
}

func contactBlock(contact *flow.ContactInfo) string {
	if contact == nil {
		return ""
	}
	var lines []string
	if contact.Phone != "" {
		lines = append(lines, "├ Телефон: "+contact.Phone)
	}
	if contact.Email != "" {
		lines = append(lines, "├ Email: "+contact.Email)
	}
	if contact.Company != "" {
		lines = append(lines, "├ Компания: "+contact.Company)
	}
	if contact.Website != "" {
		lines = append(lines, "├ Сайт: "+contact.Website)
	}
	if len(lines) == 0 {
		return ""
	}
	// The last row closes the tree.
	lines[len(lines)-1] = "└" + strings.TrimPrefix(lines[len(lines)-1], "├")
	return "📞 **Контакты:**\n" + strings.Join(lines, "\n") + "\n\n"
}

func dialogLink(userID int64) string {
	return fmt.Sprintf("🔗 **Ссылка:** [Открыть диалог](tg://user?id=%d)", userID)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
