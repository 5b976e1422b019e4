package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/models"
)

const (
	memberHelp = `Available commands:
/board - Lifetime team scoreboard
/help - Show this message`

	adminHelp = `Available commands:
/board - Lifetime team scoreboard
/daily <date> - Review progress for a day (YYYY-MM-DD, defaults to today)
/task add <id> points <score> role <ROLE> title <title> - Add or update a task
/task list - List catalog tasks
/token <user_id> <role> - Issue an API token for a team member
/revoke <user_id> - Revoke a team member's token
/help - Show this message

Examples:
/task add standup points 5 role ALL title Post the morning standup
/token jane.doe COO
/daily 2025-03-14`
)

type commandHandler func(*tgbotapi.Message) error

func (b *Bot) routeMemberCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"start": b.handleStart,
		"board": b.handleBoard,
		"help":  b.handleHelp,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) routeAdminCommands(cmd string) (commandHandler, bool) {
	commands := map[string]commandHandler{
		"task":   b.handleTask,
		"daily":  b.handleDaily,
		"token":  b.handleToken,
		"revoke": b.handleRevoke,
	}
	handler, found := commands[cmd]
	return handler, found
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendHelp(msg.Chat.ID)
		return
	}

	cmd := msg.Command()

	if handler, ok := b.routeMemberCommands(cmd); ok {
		if err := handler(msg); err != nil {
			logger.Error.Printf("Command error: %v", err)
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
		}
		return
	}

	if b.admins[msg.From.ID] {
		if handler, ok := b.routeAdminCommands(cmd); ok {
			if err := handler(msg); err != nil {
				logger.Error.Printf("Command error: %v", err)
				b.sendMessage(msg.Chat.ID, fmt.Sprintf("Error: %v", err))
			}
		}
		return
	}

	b.sendHelp(msg.Chat.ID)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	var text string
	if b.admins[msg.From.ID] {
		text = adminHelp
	} else {
		text = memberHelp
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) sendHelp(chatID int64) error {
	return b.sendMessage(chatID, "Send /help for the list of commands.")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	text := "Hi! I keep the daily task board in shape.\n\n"
	if b.admins[msg.From.ID] {
		text += "You are an admin. Send /help for the list of commands."
	} else {
		text += "Send /board to see the lifetime scoreboard."
	}

	return b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleBoard(msg *tgbotapi.Message) error {
	rows, err := b.store.FetchLifetimeBoard()
	if err != nil {
		return fmt.Errorf("failed to fetch scoreboard: %v", err)
	}

	if len(rows) == 0 {
		return b.sendMessage(msg.Chat.ID, "No totals yet")
	}

	var out strings.Builder
	out.WriteString("Lifetime scoreboard:\n\n")
	for i, row := range rows {
		out.WriteString(fmt.Sprintf("%d. %s (%s): %d points, %d tasks approved\n",
			i+1,
			row.UserID,
			row.Role,
			row.Total,
			row.TasksApproved,
		))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleDaily(msg *tgbotapi.Message) error {
	day := strings.TrimSpace(msg.CommandArguments())
	if day == "" {
		return b.sendMessage(msg.Chat.ID, "Usage: /daily <date> (YYYY-MM-DD)")
	}

	stats, err := b.store.FetchDailyReviewStats(day)
	if err != nil {
		return fmt.Errorf("failed to fetch daily stats: %v", err)
	}

	if len(stats) == 0 {
		return b.sendMessage(msg.Chat.ID, fmt.Sprintf("No submissions for %s", day))
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Submissions for %s:\n\n", day))
	for _, stat := range stats {
		out.WriteString(fmt.Sprintf("%s / %s (%s): %s, %d approvals, %d rejections\n",
			stat.OwnerID,
			stat.TaskID,
			stat.OwnerRole,
			stat.Status,
			stat.Approvals,
			stat.Rejections,
		))
	}

	return b.sendMessage(msg.Chat.ID, out.String())
}

func (b *Bot) handleTask(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage:\n"+
			"/task add <id> points <score> role <ROLE> title <title> - Add or update a task\n"+
			"/task list - List catalog tasks")
	}

	switch args[0] {
	case "add":
		return b.handleTaskAdd(msg.Chat.ID, args[1:])
	case "list":
		return b.handleTaskList(msg.Chat.ID)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (b *Bot) handleTaskAdd(chatID int64, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: add <id> points <score> role <ROLE> title <title>")
	}

	id := args[0]

	var points int
	var role string
	var title string
	var err error

	for i := 1; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return fmt.Errorf("missing value for %s", args[i])
		}

		switch args[i] {
		case "points":
			points, err = strconv.Atoi(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid points value: %v", err)
			}
		case "role":
			role = models.NormalizeRole(args[i+1])
		case "title":
			// title swallows the rest of the line
			title = strings.Join(args[i+1:], " ")
			i = len(args)
		default:
			return fmt.Errorf("unknown parameter: %s", args[i])
		}
	}

	task := models.Task{
		ID:           id,
		Title:        title,
		Points:       points,
		EligibleRole: role,
		Active:       true,
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %v", err)
	}

	existing, err := b.store.GetTask(id)
	if err != nil {
		return fmt.Errorf("failed to check existing task %s: %v", id, err)
	}

	if err := b.store.SaveTask(task); err != nil {
		return fmt.Errorf("failed to save task: %v", err)
	}

	action := "added"
	if existing != nil {
		action = "updated"
	}

	return b.sendMessage(chatID, fmt.Sprintf("✅ Task %s %s:\n"+
		"Title: %s\n"+
		"Points: %d\n"+
		"Role: %s",
		id,
		action,
		title,
		points,
		role,
	))
}

func (b *Bot) handleTaskList(chatID int64) error {
	tasks, err := b.store.ListTasks()
	if err != nil {
		return fmt.Errorf("failed to list tasks: %v", err)
	}

	if len(tasks) == 0 {
		return b.sendMessage(chatID, "No tasks in the catalog")
	}

	var out strings.Builder
	out.WriteString("Task catalog:\n\n")
	for _, task := range tasks {
		state := "active"
		if !task.Active {
			state = "inactive"
		}
		out.WriteString(fmt.Sprintf("📝 %s: %s\n"+
			"%d points, role %s, %s\n\n",
			task.ID,
			task.Title,
			task.Points,
			task.EligibleRole,
			state,
		))
	}

	return b.sendMessage(chatID, out.String())
}

func (b *Bot) handleToken(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendMessage(msg.Chat.ID, "Usage: /token <user_id> <role>")
	}

	info, created, err := b.tokens.FetchOrCreateToken(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to issue token: %v", err)
	}

	action := "already issued"
	if created {
		action = "issued"
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Token for %s (%s) %s:\n%s",
		info.UserID,
		info.Role,
		action,
		info.Token,
	))
}

func (b *Bot) handleRevoke(msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendMessage(msg.Chat.ID, "Usage: /revoke <user_id>")
	}

	if err := b.tokens.RevokeToken(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to revoke token: %v", err)
	}

	return b.sendMessage(msg.Chat.ID, fmt.Sprintf("Token for %s revoked", args[0]))
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
