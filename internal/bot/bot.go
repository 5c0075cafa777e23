package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
)

const (
	cbTogglePrefix = "toggle:"
	cbStreakPrefix = "streak:"
)

const (
	btnConfirm       = "✅ Confirm"
	btnCancel        = "↩️ Cancel"
	menuLabelSend    = "➕ Send task"
	menuLabelTasks   = "📥 My tasks"
	menuLabelSent    = "📤 Sent"
	menuLabelStreak  = "🔥 Streak"
	menuLabelReport  = "📋 Report"
	menuLabelHelp    = "ℹ️ Help"
	maxButtonTitle   = 24
	notSignedInReply = "You are not signed in. Use /enter &lt;account&gt; or /newpair first."
)

type conversationState struct {
	stage conversationStage
}

type confirmationAction int

const (
	actionReset confirmationAction = iota
)

type confirmationRequest struct {
	pair   pairing.PairID
	action confirmationAction
}

// session binds a Telegram user to the account they act as.
type session struct {
	chatID  int64
	account pairing.Account
}

// messenger is the part of the Telegram API the handlers use.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SessionStore persists sign-ins so they survive a restart.
type SessionStore interface {
	Upsert(ctx context.Context, s model.Session) error
	ListAll(ctx context.Context) ([]model.Session, error)
}

// Services groups the core operations the bot calls.
type Services struct {
	Tasks     *service.TaskService
	Profiles  *service.ProfileService
	Rewards   *service.RewardService
	Streaks   *service.StreakService
	Reports   *service.ReportService
	Generator *pairing.Generator
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	out           messenger
	svc           Services
	logger        *slog.Logger
	sessions      map[int64]session
	persisted     SessionStore
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, svc Services, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, svc, logger)
	b.api = api
	b.logger.Info("bot authorized", "username", api.Self.UserName)
	return b, nil
}

func newBot(out messenger, svc Services, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		out:           out,
		svc:           svc,
		logger:        logger,
		sessions:      make(map[int64]session),
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// UseSessionStore restores saved sign-ins and persists new ones to store.
func (b *Bot) UseSessionStore(ctx context.Context, store SessionStore) error {
	saved, err := store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.persisted = store
	for _, s := range saved {
		b.sessions[s.TelegramID] = session{chatID: s.ChatID, account: pairing.Account(s.Account)}
	}
	b.logger.Info("sessions restored", "count", len(saved))
	return nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no telegram api")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", "error", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", "error", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}

	if msg.IsCommand() {
		b.logger.Debug("command", "user", msg.From.ID, "command", msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Use /send to give your partner a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		return b.handleHelp(msg)
	case "newpair":
		return b.handleNewPair(ctx, msg)
	case "enter":
		return b.handleEnter(ctx, msg, args)
	case "whoami":
		return b.handleWhoAmI(msg)
	case "send":
		return b.handleSend(ctx, msg, args)
	case "tasks":
		return b.handleListReceived(ctx, msg)
	case "sent":
		return b.handleListSent(ctx, msg)
	case "streak":
		return b.handleStreak(ctx, msg)
	case "reward":
		return b.handleReward(ctx, msg, args)
	case "mood":
		return b.handleProfile(ctx, msg, args, true)
	case "want":
		return b.handleProfile(ctx, msg, args, false)
	case "partner":
		return b.handlePartner(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "reset":
		return b.handleReset(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "🤝 <b>Relationship tasks</b>\n" +
		"Send your partner a small daily task and keep a shared streak.\n\n" +
		"• /newpair - create two linked accounts\n" +
		"• /enter &lt;account&gt; - sign in with your account number\n" +
		"• /whoami - your account, partner and pair\n" +
		"• /send &lt;task&gt; - send a task to your partner\n" +
		"• /tasks - tasks you received, tap to check off today\n" +
		"• /sent - tasks you sent and today's state\n" +
		"• /streak - shared streak and reward progress\n" +
		"• /reward &lt;days&gt; &lt;gift&gt; - set the pair's reward\n" +
		"• /mood &lt;text&gt;, /want &lt;text&gt; - tell your partner how you are\n" +
		"• /partner - your partner's mood and wish\n" +
		"• /report - today's summary\n" +
		"• /reset - delete all tasks of the pair\n" +
		"• /cancel - cancel the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleNewPair(ctx context.Context, msg *tgbotapi.Message) error {
	mine, partner := b.svc.Generator.GeneratePair()
	b.signIn(ctx, msg, mine)
	b.logger.Info("pair generated", "user", msg.From.ID, "pair", pairing.PairOf(mine))

	text := fmt.Sprintf("🆕 <b>New pair</b>\nYour account: <code>%s</code>\nPartner account: <code>%s</code>\n\n"+
		"You are signed in. Share the partner number so they can /enter it.", mine, partner)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleEnter(ctx context.Context, msg *tgbotapi.Message, args string) error {
	account, err := pairing.ParseAccount(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Account number must contain digits only, e.g. /enter 100001")
	}
	b.signIn(ctx, msg, account)
	b.logger.Info("signed in", "user", msg.From.ID, "account", account)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Signed in as <code>%s</code> (pair %s).", account, pairing.PairOf(account)))
}

func (b *Bot) handleWhoAmI(msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👤 Account <code>%s</code>\n🤝 Partner <code>%s</code>\n🔗 Pair %s",
		s.account, pairing.Partner(s.account), pairing.PairOf(s.account)))
}

func (b *Bot) handleSend(ctx context.Context, msg *tgbotapi.Message, args string) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	if args == "" {
		b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ What should your partner do? Send the task text.", cancelKeyboard())
	}
	return b.finishTaskCreation(ctx, msg.Chat.ID, s.account, args)
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	switch state.stage {
	case stageTitle:
		if isCancelInput(msg.Text) {
			b.clearConversation(msg.From.ID)
			return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
		}
		s, ok := b.getSession(msg.From.ID)
		if !ok {
			b.clearConversation(msg.From.ID)
			return b.sendText(msg.Chat.ID, notSignedInReply)
		}
		if strings.TrimSpace(msg.Text) == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The task text must not be empty. Try again.", cancelKeyboard())
		}
		b.clearConversation(msg.From.ID)
		return b.finishTaskCreation(ctx, msg.Chat.ID, s.account, msg.Text)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Try /send again.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, sender pairing.Account, title string) error {
	task, err := b.svc.Tasks.SendToPartner(ctx, sender, title)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not send the task: %s", escape(userMessage(err))))
	}
	if err := b.sendText(chatID, fmt.Sprintf("📨 Sent to <code>%s</code>: %s", task.Recipient, escape(task.Title))); err != nil {
		return err
	}
	b.notifyAccount(task.Recipient, fmt.Sprintf("📬 Your partner sent you a task: <b>%s</b>\nSee /tasks.", escape(task.Title)))
	return nil
}

func (b *Bot) handleListReceived(ctx context.Context, msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	return b.sendReceivedList(ctx, msg.Chat.ID, s.account)
}

func (b *Bot) sendReceivedList(ctx context.Context, chatID int64, account pairing.Account) error {
	tasks := b.svc.Tasks.TasksReceivedBy(ctx, account)
	if len(tasks) == 0 {
		return b.sendText(chatID, "You have no tasks yet. Ask your partner to /send one.")
	}

	today := b.svc.Streaks.Today()
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📥 <b>Your tasks</b> · %s\n", model.DayKey(today)))
	builder.WriteString("Tap a task to check it off for today (tap again to undo).\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		icon := "⬜"
		if task.IsDone(today) {
			icon = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s\n", icon, escape(task.Title)))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", icon, shortTitle(task.Title, maxButtonTitle)), cbTogglePrefix+task.ID),
			tgbotapi.NewInlineKeyboardButtonData("🔥", cbStreakPrefix+task.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) handleListSent(ctx context.Context, msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	tasks := b.svc.Tasks.TasksSentBy(ctx, s.account)
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "You have not sent any tasks yet. Try /send.")
	}
	today := b.svc.Streaks.Today()
	var builder strings.Builder
	builder.WriteString("📤 <b>Sent to your partner</b>\n")
	for _, task := range tasks {
		icon := "⬜"
		if task.IsDone(today) {
			icon = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s\n", icon, escape(task.Title)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	progress, err := b.svc.Streaks.Progress(ctx, s.account)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not compute the streak: %s", escape(userMessage(err))))
	}
	return b.sendText(msg.Chat.ID, service.FormatProgress(progress))
}

func (b *Bot) handleReward(ctx context.Context, msg *tgbotapi.Message, args string) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	pair := pairing.PairOf(s.account)
	if args == "" {
		cfg, configured := b.svc.Rewards.Get(ctx, pair)
		gift := cfg.Gift
		if gift == "" {
			gift = "not set"
		}
		note := ""
		if !configured {
			note = " (default)"
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🎁 Goal: %d days%s\nGift: %s\n\nChange it with /reward 7 dinner out", cfg.DaysRequired, note, escape(gift)))
	}

	daysRaw, gift, _ := strings.Cut(args, " ")
	days, err := strconv.Atoi(daysRaw)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The goal must be a number of days, e.g. /reward 7 dinner out")
	}
	cfg, err := b.svc.Rewards.Configure(ctx, pair, service.RewardInput{DaysRequired: days, Gift: gift})
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the reward: %s", escape(userMessage(err))))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🎁 Reward saved: %s after %d days.", escape(cfg.Gift), cfg.DaysRequired))
}

func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message, args string, mood bool) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	if args == "" {
		return b.sendText(msg.Chat.ID, "Add some text, e.g. /mood happy or /want a walk together")
	}
	var err error
	if mood {
		_, err = b.svc.Profiles.SetMood(ctx, s.account, args)
	} else {
		_, err = b.svc.Profiles.SetWant(ctx, s.account, args)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save: %s", escape(userMessage(err))))
	}
	return b.sendText(msg.Chat.ID, "💬 Saved. Your partner will see it in /partner.")
}

func (b *Bot) handlePartner(ctx context.Context, msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	partner := pairing.Partner(s.account)
	p := b.svc.Profiles.Get(ctx, partner)
	mood, want := p.Mood, p.Want
	if mood == "" {
		mood = "—"
	}
	if want == "" {
		want = "—"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("💬 <b>Partner %s</b>\nMood: %s\nWants: %s", partner, escape(mood), escape(want)))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	text, err := b.svc.Reports.DailySummary(ctx, s.account)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(userMessage(err))))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReset(msg *tgbotapi.Message) error {
	s, ok := b.getSession(msg.From.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, notSignedInReply)
	}
	pair := pairing.PairOf(s.account)
	b.setConfirmation(msg.From.ID, confirmationRequest{pair: pair, action: actionReset})
	return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("⚠️ Delete <b>all</b> tasks of pair %s? This also resets the streak.", pair), confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	switch {
	case isConfirmInput(msg.Text):
		b.clearConfirmation(msg.From.ID)
		removed, err := b.svc.Tasks.ResetPair(ctx, req.pair)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Reset failed: %s", escape(userMessage(err))))
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Removed %d tasks.", removed))
	case isCancelInput(msg.Text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Nothing was deleted.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the reset.", confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID

	s, ok := b.getSession(cb.From.ID)
	if !ok {
		b.ack(cb.ID, "Sign in first")
		return nil
	}

	switch {
	case strings.HasPrefix(cb.Data, cbTogglePrefix):
		id := strings.TrimPrefix(cb.Data, cbTogglePrefix)
		task, err := b.svc.Tasks.ToggleToday(ctx, s.account, id)
		if err != nil {
			b.ack(cb.ID, userMessage(err))
			return nil
		}
		state := "not done"
		if task.IsDone(b.svc.Streaks.Today()) {
			state = "done"
		}
		b.ack(cb.ID, fmt.Sprintf("%s: %s", shortTitle(task.Title, maxButtonTitle), state))
		return b.sendReceivedList(ctx, chatID, s.account)
	case strings.HasPrefix(cb.Data, cbStreakPrefix):
		id := strings.TrimPrefix(cb.Data, cbStreakPrefix)
		tp, err := b.svc.Streaks.TaskProgress(ctx, s.account, id, b.svc.Streaks.Today())
		if err != nil {
			b.ack(cb.ID, userMessage(err))
			return nil
		}
		b.ack(cb.ID, "")
		text := fmt.Sprintf("🔥 This task: <b>%d</b> %s in a row", tp.Streak, days(tp.Streak))
		if tp.Status != nil && !tp.Status.Unlocked {
			text += fmt.Sprintf(" · %d to go", tp.Status.Remaining)
		} else if tp.Status != nil {
			text += " · target reached 🎉"
		}
		return b.sendText(chatID, text)
	default:
		b.ack(cb.ID, "")
		return nil
	}
}

// SendDailyReports sends a summary to every signed-in user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	for _, s := range b.snapshotSessions() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.svc.Reports.DailySummary(ctx, s.account)
		if err != nil {
			b.logger.Error("build summary", "account", s.account, "error", err)
			continue
		}
		if err := b.sendText(s.chatID, text); err != nil {
			b.logger.Error("send summary", "chat", s.chatID, "error", err)
		}
	}
	return nil
}

func (b *Bot) notifyAccount(account pairing.Account, text string) {
	for _, s := range b.snapshotSessions() {
		if s.account != account {
			continue
		}
		if err := b.sendText(s.chatID, text); err != nil {
			b.logger.Warn("notify partner", "chat", s.chatID, "error", err)
		}
	}
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("callback ack", "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelSend):
		return true, b.handleSend(ctx, msg, "")
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListReceived(ctx, msg)
	case strings.ToLower(menuLabelSent):
		return true, b.handleListSent(ctx, msg)
	case strings.ToLower(menuLabelStreak):
		return true, b.handleStreak(ctx, msg)
	case strings.ToLower(menuLabelReport):
		return true, b.handleReport(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// signIn binds the sender to account and persists the binding when a store is set.
func (b *Bot) signIn(ctx context.Context, msg *tgbotapi.Message, account pairing.Account) {
	b.setSession(msg.From.ID, session{chatID: msg.Chat.ID, account: account})

	b.mu.Lock()
	store := b.persisted
	b.mu.Unlock()
	if store == nil {
		return
	}
	err := store.Upsert(ctx, model.Session{
		TelegramID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		Account:    int64(account),
		Username:   msg.From.UserName,
	})
	if err != nil {
		b.logger.Warn("persist session", "user", msg.From.ID, "error", err)
	}
}

func (b *Bot) getSession(userID int64) (session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	return s, ok
}

func (b *Bot) setSession(userID int64, s session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[userID] = s
}

func (b *Bot) snapshotSessions() []session {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	return out
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSend),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelSent),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStreak),
			tgbotapi.NewKeyboardButton(menuLabelReport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

// userMessage strips wrapping from errors the user can act on.
func userMessage(err error) string {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, apperr.ErrTaskNotFound):
		return "task not found"
	case apperr.IsStorage(err):
		return "storage is unavailable, try again later"
	default:
		return err.Error()
	}
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

func escape(s string) string {
	return html.EscapeString(s)
}
