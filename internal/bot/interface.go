// Package bot provides the chat platform adapter for rosebot.
//
// The engine consumes the platform through the ChatAPI capability interface:
// send/delete messages, look up a chat member's role, restrict a member, and
// ban/unban. The Telegram adapter implements it with long polling via
// go-telegram-bot-api; tests use in-memory fakes.
package bot

// Chat member roles as reported by the platform
const (
	RoleCreator       = "creator"
	RoleAdministrator = "administrator"
	RoleMember        = "member"
)

// Permissions is the bundle of member capabilities applied atomically by a
// restriction call.
type Permissions struct {
	CanSendMessages       bool
	CanSendMediaMessages  bool
	CanSendPolls          bool
	CanSendOtherMessages  bool
	CanAddWebPagePreviews bool
	CanChangeInfo         bool
	CanInviteUsers        bool
	CanPinMessages        bool
}

// MutedPermissions returns the all-false bundle applied by a mute
func MutedPermissions() Permissions {
	return Permissions{}
}

// UnmutedPermissions returns the baseline restored by an unmute: the member
// may talk again but still cannot change chat structure.
func UnmutedPermissions() Permissions {
	return Permissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	}
}

// Member is a chat member as seen by a role query
type Member struct {
	UserID int64
	Name   string
	Role   string
}

// IsPrivileged reports whether the role may not be moderated by the bot
func IsPrivileged(role string) bool {
	return role == RoleAdministrator || role == RoleCreator
}

// ChatAPI is the capability surface the engine needs from the chat platform.
// Every method reports platform failures as errors; callers convert them to
// user-visible replies.
type ChatAPI interface {
	// Send sends a plain message to a chat
	Send(chatID int64, text string) error

	// Reply sends a message as a reply to an existing message
	Reply(chatID int64, replyToMessageID int, text string) error

	// SendPhoto sends an image by URL with an optional caption
	SendPhoto(chatID int64, url, caption string) error

	// Delete removes a message from a chat
	Delete(chatID int64, messageID int) error

	// MemberRole fetches the live membership role of a user in a chat
	MemberRole(chatID, userID int64) (string, error)

	// Restrict applies a permission bundle to a member. A zero untilDate
	// means the restriction has no time bound.
	Restrict(chatID, userID int64, perms Permissions, untilDate int64) error

	// Ban permanently bans a member from a chat
	Ban(chatID, userID int64) error

	// Unban lifts a ban; combined with Ban it implements a kick
	Unban(chatID, userID int64) error

	// Administrators lists the chat's administrators and creator
	Administrators(chatID int64) ([]Member, error)

	// SelfID returns the bot's own user id
	SelfID() int64
}
