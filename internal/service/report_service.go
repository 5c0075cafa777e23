package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

// ReportService builds human-readable summaries for daily notifications.
type ReportService struct {
	tasks    *TaskService
	streaks  *StreakService
	profiles *ProfileService
	clock    Clock
}

func NewReportService(tasks *TaskService, streaks *StreakService, profiles *ProfileService, clock Clock) *ReportService {
	return &ReportService{tasks: tasks, streaks: streaks, profiles: profiles, clock: clock}
}

// DailySummary renders today's state for account as Telegram HTML.
func (s *ReportService) DailySummary(ctx context.Context, account pairing.Account) (string, error) {
	today := s.clock.Today()
	progress, err := s.streaks.ProgressOn(ctx, account, today)
	if err != nil {
		return "", err
	}
	partner := pairing.Partner(account)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · account %s · partner %s\n\n", model.DayKey(today), account, partner))

	builder.WriteString("📥 <b>Your tasks today</b>\n")
	received := s.tasks.TasksReceivedBy(ctx, account)
	if len(received) == 0 {
		builder.WriteString("— nothing received yet\n")
	}
	for _, task := range received {
		builder.WriteString(formatTaskLine(task, today))
	}

	builder.WriteString("\n📤 <b>Sent to partner</b>\n")
	sent := s.tasks.TasksSentBy(ctx, account)
	if len(sent) == 0 {
		builder.WriteString("— nothing sent yet\n")
	}
	for _, task := range sent {
		builder.WriteString(formatTaskLine(task, today))
	}

	builder.WriteString("\n")
	builder.WriteString(FormatProgress(progress))

	profile := s.profiles.Get(ctx, partner)
	if profile.Mood != "" || profile.Want != "" {
		builder.WriteString("\n\n💬 <b>Partner</b>\n")
		if profile.Mood != "" {
			builder.WriteString(fmt.Sprintf("   mood: %s\n", html.EscapeString(profile.Mood)))
		}
		if profile.Want != "" {
			builder.WriteString(fmt.Sprintf("   wants: %s\n", html.EscapeString(profile.Want)))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// FormatProgress renders streak and reward lines.
func FormatProgress(p Progress) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔥 Streak: <b>%d</b> %s (%s)\n", p.Streak, days(p.Streak), p.Policy))

	gift := strings.TrimSpace(p.Reward.Gift)
	if gift == "" {
		gift = "reward"
	}
	gift = html.EscapeString(gift)
	if p.Status.Unlocked {
		sb.WriteString(fmt.Sprintf("🎁 %s unlocked! Goal of %d %s reached.", gift, p.Reward.DaysRequired, days(p.Reward.DaysRequired)))
	} else {
		sb.WriteString(fmt.Sprintf("🎁 %s in %d more %s (goal %d)", gift, p.Status.Remaining, days(p.Status.Remaining), p.Reward.DaysRequired))
	}
	return sb.String()
}

func formatTaskLine(task model.Task, today time.Time) string {
	icon := "⬜"
	if task.IsDone(today) {
		icon = "✅"
	}
	line := fmt.Sprintf("%s %s", icon, html.EscapeString(task.Title))
	if task.Description != "" {
		line += fmt.Sprintf("\n   📝 %s", html.EscapeString(task.Description))
	}
	return line + "\n"
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
