package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/rosebot/internal/logger"
	"github.com/keepmind9/rosebot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// TelegramBot implements ChatAPI for Telegram using long polling
type TelegramBot struct {
	token string
	bot   *tgbotapi.BotAPI
}

// NewTelegramBot creates a new Telegram bot instance. Connect must be called
// before any other method.
func NewTelegramBot(token string) *TelegramBot {
	return &TelegramBot{
		token: token,
	}
}

// Connect authenticates against the Telegram API
func (t *TelegramBot) Connect() error {
	logger.WithFields(logrus.Fields{
		"token": maskSecret(t.token),
	}).Info("connecting-to-telegram")

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err,
		}).Error("failed-to-initialize-telegram-bot")
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	t.bot = bot

	logger.WithFields(logrus.Fields{
		"bot_username": bot.Self.UserName,
		"bot_id":       bot.Self.ID,
	}).Info("telegram-bot-initialized-successfully")

	return nil
}

// SelfID returns the bot's own user id
func (t *TelegramBot) SelfID() int64 {
	if t.bot == nil {
		return 0
	}
	return t.bot.Self.ID
}

// FetchUpdates requests the next batch of inbound updates, blocking up to
// timeoutSeconds. It satisfies the polling supervisor's fetcher contract.
func (t *TelegramBot) FetchUpdates(offset, limit, timeoutSeconds int) ([]tgbotapi.Update, error) {
	if t.bot == nil {
		return nil, fmt.Errorf("telegram bot not connected")
	}

	u := tgbotapi.NewUpdate(offset)
	u.Limit = limit
	u.Timeout = timeoutSeconds

	updates, err := t.bot.GetUpdates(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updates: %w", err)
	}
	return updates, nil
}

// Send sends a plain message to a Telegram chat
func (t *TelegramBot) Send(chatID int64, text string) error {
	return t.send(chatID, 0, text)
}

// Reply sends a message as a reply to an existing message
func (t *TelegramBot) Reply(chatID int64, replyToMessageID int, text string) error {
	return t.send(chatID, replyToMessageID, text)
}

func (t *TelegramBot) send(chatID int64, replyToMessageID int, text string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	if len(text) > constants.MaxTelegramMessageLength {
		logger.WithFields(logrus.Fields{
			"original_length": len(text),
			"max_length":      constants.MaxTelegramMessageLength,
		}).Info("truncating-message-for-telegram-limit")
		text = text[:constants.MaxTelegramMessageLength]
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if replyToMessageID != 0 {
		msg.ReplyToMessageID = replyToMessageID
	}

	if _, err := t.bot.Send(msg); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-message-to-telegram")
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	return nil
}

// SendPhoto sends an image by URL with an optional caption
func (t *TelegramBot) SendPhoto(chatID int64, url, caption string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption

	if _, err := t.bot.Send(photo); err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Error("failed-to-send-photo-to-telegram")
		return fmt.Errorf("failed to send photo to chat %d: %w", chatID, err)
	}

	return nil
}

// Delete removes a message from a chat
func (t *TelegramBot) Delete(chatID int64, messageID int) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// MemberRole fetches the live membership role of a user in a chat
func (t *TelegramBot) MemberRole(chatID, userID int64) (string, error) {
	if t.bot == nil {
		return "", fmt.Errorf("telegram bot not connected")
	}

	member, err := t.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member %d in chat %d: %w", userID, chatID, err)
	}

	return member.Status, nil
}

// Restrict applies a permission bundle to a member until untilDate
// (unix seconds, zero for no time bound)
func (t *TelegramBot) Restrict(chatID, userID int64, perms Permissions, untilDate int64) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	_, err := t.bot.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate: untilDate,
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       perms.CanSendMessages,
			CanSendMediaMessages:  perms.CanSendMediaMessages,
			CanSendPolls:          perms.CanSendPolls,
			CanSendOtherMessages:  perms.CanSendOtherMessages,
			CanAddWebPagePreviews: perms.CanAddWebPagePreviews,
			CanChangeInfo:         perms.CanChangeInfo,
			CanInviteUsers:        perms.CanInviteUsers,
			CanPinMessages:        perms.CanPinMessages,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to restrict member %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

// Ban permanently bans a member from a chat
func (t *TelegramBot) Ban(chatID, userID int64) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	_, err := t.bot.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to ban member %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

// Unban lifts a ban; Ban followed by Unban implements a kick
func (t *TelegramBot) Unban(chatID, userID int64) error {
	if t.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	_, err := t.bot.Request(tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		OnlyIfBanned: true,
	})
	if err != nil {
		return fmt.Errorf("failed to unban member %d in chat %d: %w", userID, chatID, err)
	}
	return nil
}

// Administrators lists the chat's administrators and creator
func (t *TelegramBot) Administrators(chatID int64) ([]Member, error) {
	if t.bot == nil {
		return nil, fmt.Errorf("telegram bot not connected")
	}

	admins, err := t.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list administrators of chat %d: %w", chatID, err)
	}

	members := make([]Member, 0, len(admins))
	for _, a := range admins {
		name := ""
		if a.User != nil {
			name = a.User.FirstName
			if name == "" {
				name = a.User.UserName
			}
		}
		var userID int64
		if a.User != nil {
			userID = a.User.ID
		}
		members = append(members, Member{
			UserID: userID,
			Name:   name,
			Role:   a.Status,
		})
	}
	return members, nil
}
