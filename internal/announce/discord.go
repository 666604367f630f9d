package announce

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
)

// MaxMessageLength is Discord's content limit for a single message.
const MaxMessageLength = 2000

// MessageSender is the part of *discordgo.Session the announcer uses.
type MessageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordConfig configures a Discord announcer.
type DiscordConfig struct {
	Session   MessageSender
	ChannelID string
	Logger    *slog.Logger
}

// Discord posts announcements as plain channel messages. Long batches are
// split on line boundaries to stay under the message limit.
type Discord struct {
	session   MessageSender
	channelID string
	logger    *slog.Logger
}

func NewDiscord(cfg *DiscordConfig) (*Discord, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("discord config is required")
	}
	if cfg.Session == nil {
		return nil, dnderr.InvalidArgument("discord session is required")
	}
	if cfg.ChannelID == "" {
		return nil, dnderr.InvalidArgument("discord channel ID is required")
	}

	return &Discord{
		session:   cfg.Session,
		channelID: cfg.ChannelID,
		logger:    logging.Component(cfg.Logger, "announce").With("channel_id", cfg.ChannelID),
	}, nil
}

func (d *Discord) Announce(ctx context.Context, messages ...string) error {
	for _, chunk := range Chunk(nonEmpty(messages), MaxMessageLength) {
		if _, err := d.session.ChannelMessageSend(d.channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			d.logger.Error("failed to send announcement", "error", err)
			return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to send announcement")
		}
	}
	return nil
}

// Chunk joins messages with newlines into pieces no longer than limit.
// A single line longer than limit is cut.
func Chunk(messages []string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, msg := range messages {
		for _, line := range strings.Split(msg, "\n") {
			for len(line) > limit {
				flush()
				chunks = append(chunks, line[:limit])
				line = line[limit:]
			}
			if current.Len() > 0 && current.Len()+1+len(line) > limit {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(line)
		}
	}
	flush()
	return chunks
}
