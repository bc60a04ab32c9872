package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"northstar/internal/advisor"
	"northstar/internal/auth"
	"northstar/internal/briefing"
	"northstar/internal/content"
	"northstar/internal/transcript"
)

const (
	journalCmd = "journal"
	newChatCmd = "new"
)

// advisorAPI is the slice of the API client the bot calls directly;
// everything conversational goes through the per-chat orchestrator.
type advisorAPI interface {
	FetchBriefing(ctx context.Context) (briefing.Input, error)
	QuickJournal(ctx context.Context, text string) error
	Engagement(ctx context.Context, kind, target string) error
}

// Surface bundles the per-chat advisor state: one orchestrator, one
// onboarding track, and the briefing shown before any conversation.
type Surface struct {
	Orch       *advisor.Orchestrator
	Onboarding *advisor.Onboarding

	// mu guards the fields below: the update loop and the scheduled
	// briefing push touch them from different goroutines.
	mu      sync.Mutex
	mounted bool
	brief   *briefing.Briefing
	briefID int // message id of the rendered briefing, for done-toggle edits
	done    *briefing.DoneSet
	chips   []string
	actions []string // affordances of the most recent answer
}

// SurfaceFactory builds the surface for a chat the first time it talks
// to the bot. Wiring (session slot paths etc.) lives with the caller.
type SurfaceFactory func(chatID int64) (*Surface, error)

type Bot struct {
	api        *tgbotapi.BotAPI
	s          sender
	authSvc    *auth.Service
	client     advisorAPI
	creds      *auth.CredentialStore
	rec        transcript.Recorder
	parseMode  string
	newSurface SurfaceFactory

	mu       sync.Mutex
	surfaces map[int64]*Surface
}

func New(botToken string, authSvc *auth.Service, client advisorAPI, creds *auth.CredentialStore, rec transcript.Recorder, parseMode string, factory SurfaceFactory) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:        api,
		s:          botAPISender{api: api},
		authSvc:    authSvc,
		client:     client,
		creds:      creds,
		rec:        rec,
		parseMode:  parseMode,
		newSurface: factory,
		surfaces:   make(map[int64]*Surface),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
			continue
		}
	}
}

func (b *Bot) surfaceFor(chatID int64) (*Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sf, ok := b.surfaces[chatID]; ok {
		return sf, nil
	}
	sf, err := b.newSurface(chatID)
	if err != nil {
		return nil, err
	}
	if sf.done == nil {
		sf.done = briefing.NewDoneSet()
	}
	b.surfaces[chatID] = sf
	return sf, nil
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "Sorry, this is a private assistant.")
		return
	}

	sf, err := b.surfaceFor(msg.Chat.ID)
	if err != nil {
		log.Printf("failed to build surface for chat %d: %v", msg.Chat.ID, err)
		b.sendMessage(msg.Chat.ID, "Something is misconfigured on my side.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, sf, msg)
		return
	}
	if !sf.Onboarding.Complete() {
		b.handleOnboardingMessage(ctx, sf, msg.Chat.ID, msg.Text)
		return
	}
	b.mount(ctx, sf, msg.Chat.ID)
	b.submit(ctx, sf, msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, sf *Surface, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if !sf.Onboarding.Complete() {
			b.beginOnboarding(ctx, sf, msg.Chat.ID)
			return
		}
		sf.mu.Lock()
		sf.mounted = false // re-mount shows a fresh briefing
		sf.mu.Unlock()
		b.mount(ctx, sf, msg.Chat.ID)
	case newChatCmd:
		sf.Orch.Reset()
		sf.mu.Lock()
		sf.actions = nil
		sf.mu.Unlock()
		b.sendMessage(msg.Chat.ID, "🆕 Started a new conversation. Your earlier chats stay on the server.")
	case journalCmd:
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			b.sendMessage(msg.Chat.ID, "Usage: /journal <what's on your mind>")
			return
		}
		// Best-effort capture: failures never reach the user.
		if err := b.client.QuickJournal(ctx, text); err != nil {
			log.Printf("quick journal capture failed: %v", err)
		}
		b.sendMessage(msg.Chat.ID, "📓 Captured.")
	default:
		b.sendMessage(msg.Chat.ID, "I know /start, /new and /journal.")
	}
}

// beginOnboarding advances the gating track: collect a credential
// first, then run the interview.
func (b *Bot) beginOnboarding(ctx context.Context, sf *Surface, chatID int64) {
	switch sf.Onboarding.State() {
	case advisor.StateCollectingCredential:
		b.sendMessage(chatID, "👋 Welcome! Paste your advisor API token to get started.")
	case advisor.StateInterviewing:
		opening, err := sf.Onboarding.Begin(ctx)
		if err != nil {
			log.Printf("failed to start onboarding interview: %v", err)
			b.sendMessage(chatID, "I couldn't start the interview. Try /start again in a moment.")
			return
		}
		b.sendMessage(chatID, opening)
	}
}

func (b *Bot) handleOnboardingMessage(ctx context.Context, sf *Surface, chatID int64, text string) {
	switch sf.Onboarding.State() {
	case advisor.StateCollectingCredential:
		if err := b.creds.Set(text); err != nil {
			b.sendMessage(chatID, "That doesn't look like a token. Paste your advisor API token.")
			return
		}
		sf.Onboarding.CredentialProvided()
		b.sendMessage(chatID, "🔑 Credential saved.")
		b.beginOnboarding(ctx, sf, chatID)
	case advisor.StateInterviewing:
		rep, err := sf.Onboarding.Reply(ctx, text)
		if err != nil {
			log.Printf("onboarding turn failed: %v", err)
			b.sendMessage(chatID, "That didn't go through, tell me again?")
			return
		}
		b.sendMessage(chatID, rep.Message)
		if rep.Done {
			if rep.GoalsCreated > 0 {
				b.sendMessage(chatID, fmt.Sprintf("🎯 Set up %d goals for you.", rep.GoalsCreated))
			}
			b.mount(ctx, sf, chatID)
		}
	}
}

// mount prepares the idle screen for a surface: restore the persisted
// conversation, and show the briefing when no conversation exists yet.
// It runs once per surface unless explicitly re-requested.
func (b *Bot) mount(ctx context.Context, sf *Surface, chatID int64) {
	sf.mu.Lock()
	if sf.mounted {
		sf.mu.Unlock()
		return
	}
	sf.mounted = true
	sf.mu.Unlock()

	sf.Orch.Session().Restore(ctx)
	if len(sf.Orch.Session().Messages()) > 0 {
		b.sendMessage(chatID, "🧵 Picked up your conversation where we left off.")
		return
	}
	b.pushBriefing(ctx, sf, chatID)
}

// pushBriefing fetches a fresh snapshot and renders it. Used on mount
// and by the scheduled morning push.
func (b *Bot) pushBriefing(ctx context.Context, sf *Surface, chatID int64) {
	in, err := b.client.FetchBriefing(ctx)
	if err != nil {
		log.Printf("briefing fetch failed: %v", err)
		b.sendMessage(chatID, "Ask me anything about your goals or your week.")
		return
	}
	brief := briefing.Build(in)
	done := briefing.NewDoneSet()

	text, kb := renderBriefing(brief, done)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	msg.ReplyMarkup = kb
	sent, err := b.s.Send(msg)
	if err != nil {
		log.Printf("failed to send briefing: %v", err)
		return
	}
	sf.mu.Lock()
	sf.brief = brief
	sf.done = done
	sf.chips = brief.Chips
	sf.briefID = sent.MessageID
	sf.mu.Unlock()
}

// PushBriefing renders the morning briefing into every known chat. The
// scheduler calls this.
func (b *Bot) PushBriefing(ctx context.Context) error {
	b.mu.Lock()
	chats := make(map[int64]*Surface, len(b.surfaces))
	for id, sf := range b.surfaces {
		chats[id] = sf
	}
	b.mu.Unlock()
	for chatID, sf := range chats {
		if !sf.Onboarding.Complete() {
			continue
		}
		b.pushBriefing(ctx, sf, chatID)
	}
	return nil
}

// submit runs one advisor exchange: optimistic lock feedback via a
// placeholder message that tool-status updates edit in place, then the
// rendered answer replaces it.
func (b *Bot) submit(ctx context.Context, sf *Surface, chatID int64, text string) {
	if sf.Orch.Sending() {
		// Input is locked while an exchange is in flight.
		b.sendMessage(chatID, "⏳ One moment, still thinking about the last one.")
		return
	}

	placeholder := tgbotapi.NewMessage(chatID, "💭 Thinking…")
	ph, phErr := b.s.Send(placeholder)

	status := func(label string) {
		if phErr != nil || label == "" {
			return
		}
		edit := tgbotapi.NewEditMessageText(chatID, ph.MessageID, "🛠 "+label)
		if _, err := b.s.Send(edit); err != nil {
			log.Printf("failed to update tool status: %v", err)
		}
	}

	out, ok := sf.Orch.Submit(ctx, text, status)
	if !ok {
		b.deleteMessage(chatID, ph, phErr)
		return
	}
	if out.Discarded {
		b.deleteMessage(chatID, ph, phErr)
		return
	}

	if b.rec != nil {
		_ = b.rec.Append(transcript.Entry{
			Timestamp:         time.Now().UTC(),
			ChatID:            chatID,
			ConversationID:    sf.Orch.Session().ConversationID(),
			UserMessage:       text,
			AssistantResponse: out.Message.Content,
			Failed:            out.Failed,
		})
	}

	segs := content.Extract(out.Message.Content)
	body, actions, rows := renderAnswer(segs)
	sf.mu.Lock()
	sf.actions = actions
	sf.mu.Unlock()

	if body == "" {
		body = out.Message.Content
	}
	if phErr == nil {
		edit := tgbotapi.NewEditMessageText(chatID, ph.MessageID, body)
		edit.ParseMode = b.parseMode
		if len(rows) > 0 {
			kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
			edit.ReplyMarkup = &kb
		}
		if _, err := b.s.Send(edit); err != nil {
			log.Printf("failed to edit answer into place: %v", err)
			b.sendMessage(chatID, body)
		}
	} else {
		b.sendMessage(chatID, body)
	}

	if out.Failed {
		// Transient notice on top of the chat-shaped error message; the
		// conversation stays usable.
		b.sendMessage(chatID, "⚠️ That exchange failed, you can just ask again.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		// Callback on a message the bot can no longer see.
		return
	}
	if !b.authSvc.IsAllowed(cb.From.ID) {
		return
	}
	sf, err := b.surfaceFor(cb.Message.Chat.ID)
	if err != nil {
		log.Printf("failed to build surface for chat %d: %v", cb.Message.Chat.ID, err)
		return
	}
	chatID := cb.Message.Chat.ID

	ack := func(text string) {
		if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
			log.Printf("failed to answer callback: %v", err)
		}
	}

	kind, arg, ok := splitCallback(cb.Data)
	if !ok {
		ack("")
		return
	}
	switch kind {
	case "chip":
		i, err := strconv.Atoi(arg)
		sf.mu.Lock()
		valid := err == nil && i >= 0 && i < len(sf.chips)
		var prompt string
		if valid {
			prompt = sf.chips[i]
		}
		sf.mu.Unlock()
		ack("")
		if !valid {
			return
		}
		if err := b.client.Engagement(ctx, "chip", prompt); err != nil {
			log.Printf("engagement log failed: %v", err)
		}
		b.submit(ctx, sf, chatID, prompt)
	case "act":
		i, err := strconv.Atoi(arg)
		sf.mu.Lock()
		valid := err == nil && i >= 0 && i < len(sf.actions)
		var action string
		if valid {
			action = sf.actions[i]
		}
		sf.mu.Unlock()
		ack("")
		if !valid {
			return
		}
		if err := b.client.Engagement(ctx, "affordance", action); err != nil {
			log.Printf("engagement log failed: %v", err)
		}
		b.submit(ctx, sf, chatID, action)
	case "done":
		i, err := strconv.Atoi(arg)
		sf.mu.Lock()
		if err != nil || sf.brief == nil || sf.brief.Daily == nil || i < 0 || i >= len(sf.brief.Daily.Items) {
			sf.mu.Unlock()
			ack("")
			return
		}
		key := briefing.Key(sf.brief.Daily.Items[i])
		marked := sf.done.Toggle(key)
		sf.mu.Unlock()
		if marked {
			ack("Done ✅")
		} else {
			ack("Back on the list")
		}
		if err := b.client.Engagement(ctx, "done_toggle", key); err != nil {
			log.Printf("engagement log failed: %v", err)
		}
		b.editBriefing(sf, chatID)
	default:
		ack("")
	}
}

// editBriefing re-renders the briefing message in place after a
// done-toggle.
func (b *Bot) editBriefing(sf *Surface, chatID int64) {
	sf.mu.Lock()
	if sf.brief == nil || sf.briefID == 0 {
		sf.mu.Unlock()
		return
	}
	text, kb := renderBriefing(sf.brief, sf.done)
	briefID := sf.briefID
	sf.mu.Unlock()
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, briefID, text, kb)
	edit.ParseMode = b.parseMode
	if _, err := b.s.Send(edit); err != nil {
		log.Printf("failed to edit briefing: %v", err)
	}
}

func (b *Bot) deleteMessage(chatID int64, msg tgbotapi.Message, sendErr error) {
	if sendErr != nil || msg.MessageID == 0 {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		log.Printf("failed to delete placeholder: %v", err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func splitCallback(data string) (kind, arg string, ok bool) {
	i := strings.IndexByte(data, ':')
	if i < 0 {
		return "", "", false
	}
	return data[:i], data[i+1:], true
}
