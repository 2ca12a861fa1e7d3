package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier posts messages to a Discord channel through a bot account.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

// Discord caps message content at this many characters.
const maxDiscordContent = 2000

func discordContent(msg Message) string {
	content := []rune(fmt.Sprintf("**%s** (%s)\n%s", msg.Subject, msg.To, msg.Body))
	if len(content) > maxDiscordContent {
		content = content[:maxDiscordContent]
	}
	return string(content)
}

func (d *DiscordNotifier) Notify(ctx context.Context, msg Message) error {
	content := discordContent(msg)
	if _, err := d.session.ChannelMessageSend(d.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending discord message: %w", err)
	}
	return nil
}

// New picks the Discord notifier when a bot token and channel are configured and falls
// back to logging otherwise.
func New(token, channelID string) (Notifier, error) {
	if token == "" || channelID == "" {
		return LogNotifier{}, nil
	}
	return NewDiscordNotifier(token, channelID)
}
