package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/rosebot/internal/bot"
	"github.com/keepmind9/rosebot/internal/logger"
	"github.com/sirupsen/logrus"
)

// Fixed reply texts for the error taxonomy. Authorization failures use
// distinct texts for "wrong chat kind" and "insufficient role".
const (
	replyGroupOnly     = "❌ This command only works in groups."
	replyAdminOnly     = "❌ You need to be an admin to use this command."
	replyAIPrivateOnly = "❌ AI commands are available in private chat only."
	replyAIDenied      = "❌ You are not authorized to use AI commands."
	replyAIMissing     = "⚠️ AI is not configured. Ask the operator to set an API key."
	replyNeedReply     = "❌ Reply to a message to use this command."
	replyPeerAdmin     = "❌ I can't restrict another admin."
	replyBotNotAdmin   = "⚠️ I need admin rights in this chat to do that."
	replyUpstreamError = "⚠️ Something went wrong, please try again later."
)

// AIClient is the synchronous question-answering capability consumed by the
// /ai and /image handlers. A nil client means AI is not configured.
type AIClient interface {
	Ask(ctx context.Context, question string) (string, error)
	Paint(ctx context.Context, prompt string) (string, error)
}

// Engine routes inbound messages to command handlers and owns the
// moderation state. Handlers run synchronously, one update at a time, in
// the order the supervisor delivers them.
type Engine struct {
	config    *Config
	chat      bot.ChatAPI
	ai        AIClient
	warnings  *WarningStore
	responder *KeywordResponder

	// now is a clock hook for tests
	now func() time.Time
}

// NewEngine creates an engine with an isolated warning store
func NewEngine(config *Config, chat bot.ChatAPI, ai AIClient) *Engine {
	return &Engine{
		config:    config,
		chat:      chat,
		ai:        ai,
		warnings:  NewWarningStore(),
		responder: NewKeywordResponder(),
		now:       time.Now,
	}
}

// HandleUpdate processes a single inbound update. Failures inside a handler
// are converted to replies and log entries here; they never propagate to
// the polling supervisor.
func (e *Engine) HandleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	e.handleMessage(update.Message)
}

func (e *Engine) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	logger.WithFields(logrus.Fields{
		"chat_id":   msg.Chat.ID,
		"chat_type": msg.Chat.Type,
		"user_id":   msg.From.ID,
		"command":   msg.Command(),
	}).Debug("processing-message")

	if !msg.IsCommand() {
		// Ordinary chat goes to the keyword responder; at most one reply
		if reply := e.responder.Respond(msg.Text); reply != "" {
			e.reply(msg, reply)
		}
		return
	}

	// Command() strips the leading marker and any @botname mention suffix.
	// Matching is exact and case-sensitive; each handler does its own
	// authorization gating.
	switch msg.Command() {
	case "start":
		e.handleStart(msg)
	case "help":
		e.handleHelp(msg)
	case "ai":
		e.handleAI(msg)
	case "image":
		e.handleImage(msg)
	case "mute":
		e.handleMute(msg)
	case "unmute":
		e.handleUnmute(msg)
	case "warn":
		e.handleWarn(msg)
	case "warnings":
		e.handleWarnings(msg)
	case "ban":
		e.handleBan(msg)
	case "kick":
		e.handleKick(msg)
	case "del":
		e.handleDel(msg)
	case "userinfo":
		e.handleUserinfo(msg)
	case "admins":
		e.handleAdmins(msg)
	default:
		// Unknown commands are silently ignored
		logger.WithField("command", msg.Command()).Debug("unknown-command-ignored")
	}
}

// reply sends a response to the chat the message came from. Send failures
// are logged and swallowed; there is nothing further to do with them.
func (e *Engine) reply(msg *tgbotapi.Message, text string) {
	if err := e.chat.Reply(msg.Chat.ID, msg.MessageID, text); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"error":   err,
		}).Error("failed-to-send-reply")
	}
}

// requireModerator gates moderation commands: the chat must be a group and
// the caller's live role must be administrator or creator. A failed role
// lookup counts as not authorized. Sends the rejection reply itself and
// returns false when the gate fails.
func (e *Engine) requireModerator(msg *tgbotapi.Message) bool {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		e.reply(msg, replyGroupOnly)
		return false
	}

	role, err := e.chat.MemberRole(msg.Chat.ID, msg.From.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"user_id": msg.From.ID,
			"error":   err,
		}).Warn("role-lookup-failed-treating-as-unauthorized")
		e.reply(msg, replyAdminOnly)
		return false
	}

	if !bot.IsPrivileged(role) {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"user_id": msg.From.ID,
			"role":    role,
		}).Warn("moderation-command-denied")
		e.reply(msg, replyAdminOnly)
		return false
	}

	return true
}

// requireBotAdmin checks the bot's own role via the same live lookup used
// for callers. Lookup failure counts as not admin.
func (e *Engine) requireBotAdmin(msg *tgbotapi.Message) bool {
	role, err := e.chat.MemberRole(msg.Chat.ID, e.chat.SelfID())
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"error":   err,
		}).Warn("bot-role-lookup-failed")
		e.reply(msg, replyBotNotAdmin)
		return false
	}
	if !bot.IsPrivileged(role) {
		e.reply(msg, replyBotNotAdmin)
		return false
	}
	return true
}

// requireTarget extracts the moderation target from the replied-to message
func (e *Engine) requireTarget(msg *tgbotapi.Message) *tgbotapi.User {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		e.reply(msg, replyNeedReply)
		return nil
	}
	return msg.ReplyToMessage.From
}

// requireUnprivilegedTarget refuses to moderate a peer admin or the creator
func (e *Engine) requireUnprivilegedTarget(msg *tgbotapi.Message, target *tgbotapi.User) bool {
	role, err := e.chat.MemberRole(msg.Chat.ID, target.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"user_id": target.ID,
			"error":   err,
		}).Error("target-role-lookup-failed")
		e.reply(msg, replyUpstreamError)
		return false
	}
	if bot.IsPrivileged(role) {
		e.reply(msg, replyPeerAdmin)
		return false
	}
	return true
}

func (e *Engine) handleStart(msg *tgbotapi.Message) {
	e.reply(msg, "🌹 Hello! I'm Rose, your group admin assistant.\n"+
		"Add me to a group and make me admin to unlock moderation commands.\n"+
		"Use /help to see everything I can do.")
}

func (e *Engine) handleHelp(msg *tgbotapi.Message) {
	help := `🌹 Rose Admin Bot

Moderation (groups, admins only, reply to a message):
  /mute [duration]  - Mute a member (10m, 2h, 3d; default 1 hour)
  /unmute           - Lift a mute
  /warn             - Warn a member
  /warnings         - Show a member's warning count
  /ban              - Ban a member
  /kick             - Kick a member
  /del              - Delete the replied-to message

AI (private chat, authorized users only):
  /ai <question>    - Ask the AI a question
  /image <prompt>   - Generate an image

Info:
  /userinfo         - Show your (or the replied-to user's) info
  /admins           - List group admins`

	e.reply(msg, help)
}

func (e *Engine) handleAI(msg *tgbotapi.Message) {
	if !msg.Chat.IsPrivate() {
		e.reply(msg, replyAIPrivateOnly)
		return
	}
	if !e.config.IsAIAuthorized(msg.Chat.Type, msg.From.ID) {
		logger.WithField("user_id", msg.From.ID).Warn("unauthorized-ai-access-attempt")
		e.reply(msg, replyAIDenied)
		return
	}
	if e.ai == nil {
		e.reply(msg, replyAIMissing)
		return
	}

	question := strings.TrimSpace(msg.CommandArguments())
	if question == "" {
		e.reply(msg, "Usage: /ai <question>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.config.AITimeout())
	defer cancel()

	answer, err := e.ai.Ask(ctx, question)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": msg.From.ID,
			"error":   err,
		}).Error("ai-request-failed")
		e.reply(msg, "⚠️ AI request failed, please try again later.")
		return
	}

	e.reply(msg, answer)
}

func (e *Engine) handleImage(msg *tgbotapi.Message) {
	if !msg.Chat.IsPrivate() {
		e.reply(msg, replyAIPrivateOnly)
		return
	}
	if !e.config.IsAIAuthorized(msg.Chat.Type, msg.From.ID) {
		logger.WithField("user_id", msg.From.ID).Warn("unauthorized-ai-access-attempt")
		e.reply(msg, replyAIDenied)
		return
	}
	if e.ai == nil {
		e.reply(msg, replyAIMissing)
		return
	}

	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" {
		e.reply(msg, "Usage: /image <prompt>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.config.AITimeout())
	defer cancel()

	url, err := e.ai.Paint(ctx, prompt)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": msg.From.ID,
			"error":   err,
		}).Error("image-request-failed")
		e.reply(msg, "⚠️ Image generation failed, please try again later.")
		return
	}

	if err := e.chat.SendPhoto(msg.Chat.ID, url, prompt); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"error":   err,
		}).Error("failed-to-send-generated-image")
		e.reply(msg, replyUpstreamError)
	}
}

func (e *Engine) handleMute(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	if !e.requireBotAdmin(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}
	if !e.requireUnprivilegedTarget(msg, target) {
		return
	}

	seconds := ParseMuteDuration(firstArgument(msg.CommandArguments()))
	until := e.now().Unix() + seconds

	if err := e.chat.Restrict(msg.Chat.ID, target.ID, bot.MutedPermissions(), until); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id":   msg.Chat.ID,
			"target_id": target.ID,
			"error":     err,
		}).Error("mute-restriction-failed")
		e.reply(msg, replyUpstreamError)
		return
	}

	logger.WithFields(logrus.Fields{
		"chat_id":   msg.Chat.ID,
		"caller_id": msg.From.ID,
		"target_id": target.ID,
		"seconds":   seconds,
	}).Info("member-muted")

	e.reply(msg, fmt.Sprintf("🔇 %s muted for %s.", displayName(target), FormatDuration(seconds)))
}

func (e *Engine) handleUnmute(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	if !e.requireBotAdmin(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}

	if err := e.chat.Restrict(msg.Chat.ID, target.ID, bot.UnmutedPermissions(), 0); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id":   msg.Chat.ID,
			"target_id": target.ID,
			"error":     err,
		}).Error("unmute-restriction-failed")
		e.reply(msg, replyUpstreamError)
		return
	}

	logger.WithFields(logrus.Fields{
		"chat_id":   msg.Chat.ID,
		"caller_id": msg.From.ID,
		"target_id": target.ID,
	}).Info("member-unmuted")

	e.reply(msg, fmt.Sprintf("🔊 %s unmuted.", displayName(target)))
}

func (e *Engine) handleWarn(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}

	count := e.warnings.Increment(target.ID)
	threshold := e.config.Moderation.WarnThreshold

	logger.WithFields(logrus.Fields{
		"chat_id":   msg.Chat.ID,
		"caller_id": msg.From.ID,
		"target_id": target.ID,
		"count":     count,
		"threshold": threshold,
	}).Info("member-warned")

	if count < threshold {
		e.reply(msg, fmt.Sprintf("⚠️ %s warned! (%d/%d)", displayName(target), count, threshold))
		return
	}

	// Escalation: auto-ban is a policy knob, not hard-wired behavior
	if e.config.Moderation.AutoBan && e.config.Moderation.Enforce {
		if err := e.chat.Ban(msg.Chat.ID, target.ID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":   msg.Chat.ID,
				"target_id": target.ID,
				"error":     err,
			}).Error("auto-ban-failed")
			e.reply(msg, replyUpstreamError)
			return
		}
		e.reply(msg, fmt.Sprintf("🚫 %s reached %d/%d warnings and has been banned!",
			displayName(target), count, threshold))
		return
	}

	e.reply(msg, fmt.Sprintf("🚨 %s has reached %d/%d warnings! Admins, consider taking action.",
		displayName(target), count, threshold))
}

func (e *Engine) handleWarnings(msg *tgbotapi.Message) {
	// Read-only, but still moderator-gated
	if !e.requireModerator(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}

	count := e.warnings.Get(target.ID)
	e.reply(msg, fmt.Sprintf("📋 %s has %d/%d warnings.",
		displayName(target), count, e.config.Moderation.WarnThreshold))
}

func (e *Engine) handleBan(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	if !e.requireBotAdmin(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}
	if !e.requireUnprivilegedTarget(msg, target) {
		return
	}

	if e.config.Moderation.Enforce {
		if err := e.chat.Ban(msg.Chat.ID, target.ID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":   msg.Chat.ID,
				"target_id": target.ID,
				"error":     err,
			}).Error("ban-failed")
			e.reply(msg, replyUpstreamError)
			return
		}
	} else {
		logger.WithFields(logrus.Fields{
			"chat_id":   msg.Chat.ID,
			"target_id": target.ID,
		}).Info("ban-acknowledged-dry-run")
	}

	e.reply(msg, fmt.Sprintf("🚫 %s has been banned!", displayName(target)))
}

func (e *Engine) handleKick(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	if !e.requireBotAdmin(msg) {
		return
	}
	target := e.requireTarget(msg)
	if target == nil {
		return
	}
	if !e.requireUnprivilegedTarget(msg, target) {
		return
	}

	if e.config.Moderation.Enforce {
		// Ban followed by unban removes the member without a lasting ban
		if err := e.chat.Ban(msg.Chat.ID, target.ID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":   msg.Chat.ID,
				"target_id": target.ID,
				"error":     err,
			}).Error("kick-failed")
			e.reply(msg, replyUpstreamError)
			return
		}
		if err := e.chat.Unban(msg.Chat.ID, target.ID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":   msg.Chat.ID,
				"target_id": target.ID,
				"error":     err,
			}).Error("kick-unban-failed")
		}
	} else {
		logger.WithFields(logrus.Fields{
			"chat_id":   msg.Chat.ID,
			"target_id": target.ID,
		}).Info("kick-acknowledged-dry-run")
	}

	e.reply(msg, fmt.Sprintf("👢 %s has been kicked!", displayName(target)))
}

func (e *Engine) handleDel(msg *tgbotapi.Message) {
	if !e.requireModerator(msg) {
		return
	}
	if !e.requireBotAdmin(msg) {
		return
	}
	if msg.ReplyToMessage == nil {
		e.reply(msg, replyNeedReply)
		return
	}

	if e.config.Moderation.Enforce {
		if err := e.chat.Delete(msg.Chat.ID, msg.ReplyToMessage.MessageID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":    msg.Chat.ID,
				"message_id": msg.ReplyToMessage.MessageID,
				"error":      err,
			}).Error("delete-failed")
			e.reply(msg, replyUpstreamError)
			return
		}
	} else {
		logger.WithFields(logrus.Fields{
			"chat_id":    msg.Chat.ID,
			"message_id": msg.ReplyToMessage.MessageID,
		}).Info("delete-acknowledged-dry-run")
	}

	e.reply(msg, "🗑 Message deleted!")
}

func (e *Engine) handleUserinfo(msg *tgbotapi.Message) {
	subject := msg.From
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		subject = msg.ReplyToMessage.From
	}

	info := fmt.Sprintf("🔍 User Info\n\nName: %s\nID: %d\nChat type: %s",
		displayName(subject), subject.ID, msg.Chat.Type)

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		role, err := e.chat.MemberRole(msg.Chat.ID, subject.ID)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id": msg.Chat.ID,
				"user_id": subject.ID,
				"error":   err,
			}).Warn("userinfo-role-lookup-failed")
		} else {
			info += fmt.Sprintf("\nRole: %s", role)
		}
	}

	e.reply(msg, info)
}

func (e *Engine) handleAdmins(msg *tgbotapi.Message) {
	if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
		e.reply(msg, replyGroupOnly)
		return
	}

	admins, err := e.chat.Administrators(msg.Chat.ID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": msg.Chat.ID,
			"error":   err,
		}).Error("failed-to-list-administrators")
		e.reply(msg, replyUpstreamError)
		return
	}

	var b strings.Builder
	b.WriteString("👮 Group admins:\n")
	for _, a := range admins {
		marker := "•"
		if a.Role == bot.RoleCreator {
			marker = "👑"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", marker, a.Name))
	}

	e.reply(msg, b.String())
}

// firstArgument returns the first whitespace-delimited word of a command's
// argument string, empty when there is none
func firstArgument(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// displayName prefers the first name, then the username, then the raw id
func displayName(u *tgbotapi.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.UserName != "" {
		return u.UserName
	}
	return fmt.Sprintf("%d", u.ID)
}
