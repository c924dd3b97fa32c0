package bot

import (
	"github.com/bwmarrin/discordgo"
)

// UnifiedMessageCreate is the single message create handler. Commands run on
// their own goroutine so a slow REST call never stalls the gateway reader.
func (b *Bot) UnifiedMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.Content == "" {
		return
	}

	go b.HandlePrefixCommand(m)
}
