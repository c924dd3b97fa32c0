package framework

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

type Context interface {
	// Context bounds the blocking calls made while handling the invocation.
	Context() context.Context
	GetSession() *discordgo.Session
	GetGuildID() string
	GetChannelID() string
	GetAuthor() *discordgo.User
	GetMember() *discordgo.Member
	GetArgs() []string
	GetOptions() []*discordgo.ApplicationCommandInteractionDataOption
	Reply(content string) (*discordgo.Message, error)
	ReplyEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	React(msg *discordgo.Message, emoji string) error
	DeleteMessage(msg *discordgo.Message) error
	// DeleteInvocation removes the message that triggered the command, if any.
	DeleteInvocation() error
}

// SlashContext implements Context for Slash Commands
type SlashContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Ctx         context.Context

	responded bool
	// id of the original interaction response once fetched
	responseID string
}

func NewSlashContext(s *discordgo.Session, i *discordgo.InteractionCreate) *SlashContext {
	return &SlashContext{Session: s, Interaction: i}
}

func (c *SlashContext) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *SlashContext) GetSession() *discordgo.Session {
	return c.Session
}

func (c *SlashContext) GetGuildID() string {
	return c.Interaction.GuildID
}

func (c *SlashContext) GetChannelID() string {
	return c.Interaction.ChannelID
}

func (c *SlashContext) GetAuthor() *discordgo.User {
	if c.Interaction.Member != nil {
		return c.Interaction.Member.User
	}
	return c.Interaction.User
}

func (c *SlashContext) GetMember() *discordgo.Member {
	return c.Interaction.Member
}

func (c *SlashContext) GetArgs() []string {
	return nil
}

func (c *SlashContext) GetOptions() []*discordgo.ApplicationCommandInteractionDataOption {
	return c.Interaction.ApplicationCommandData().Options
}

func (c *SlashContext) Reply(content string) (*discordgo.Message, error) {
	return c.send(&discordgo.InteractionResponseData{Content: content})
}

func (c *SlashContext) ReplyEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return c.send(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

// send answers the interaction the first time and uses followups afterwards.
func (c *SlashContext) send(data *discordgo.InteractionResponseData) (*discordgo.Message, error) {
	if c.responded {
		return c.Session.FollowupMessageCreate(c.Interaction.Interaction, true, &discordgo.WebhookParams{
			Content: data.Content,
			Embeds:  data.Embeds,
		})
	}

	err := c.Session.InteractionRespond(c.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return nil, err
	}
	c.responded = true

	msg, err := c.Session.InteractionResponse(c.Interaction.Interaction)
	if err != nil {
		return nil, err
	}
	c.responseID = msg.ID
	return msg, nil
}

func (c *SlashContext) React(msg *discordgo.Message, emoji string) error {
	return c.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji)
}

func (c *SlashContext) DeleteMessage(msg *discordgo.Message) error {
	if msg == nil {
		return nil
	}
	if msg.ID == c.responseID {
		return c.Session.InteractionResponseDelete(c.Interaction.Interaction)
	}
	return c.Session.FollowupMessageDelete(c.Interaction.Interaction, msg.ID)
}

func (c *SlashContext) DeleteInvocation() error {
	return nil
}

// PrefixContext implements Context for Prefix Commands
type PrefixContext struct {
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Args    []string
	Ctx     context.Context
}

func NewPrefixContext(s *discordgo.Session, m *discordgo.MessageCreate, args []string) *PrefixContext {
	return &PrefixContext{Session: s, Message: m, Args: args}
}

func (c *PrefixContext) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *PrefixContext) GetSession() *discordgo.Session {
	return c.Session
}

func (c *PrefixContext) GetGuildID() string {
	return c.Message.GuildID
}

func (c *PrefixContext) GetChannelID() string {
	return c.Message.ChannelID
}

func (c *PrefixContext) GetAuthor() *discordgo.User {
	return c.Message.Author
}

func (c *PrefixContext) GetMember() *discordgo.Member {
	return c.Message.Member
}

func (c *PrefixContext) GetArgs() []string {
	return c.Args
}

func (c *PrefixContext) GetOptions() []*discordgo.ApplicationCommandInteractionDataOption {
	return nil
}

func (c *PrefixContext) Reply(content string) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSend(c.Message.ChannelID, content)
}

func (c *PrefixContext) ReplyEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, embed)
}

func (c *PrefixContext) React(msg *discordgo.Message, emoji string) error {
	return c.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji)
}

func (c *PrefixContext) DeleteMessage(msg *discordgo.Message) error {
	if msg == nil {
		return nil
	}
	return c.Session.ChannelMessageDelete(msg.ChannelID, msg.ID)
}

func (c *PrefixContext) DeleteInvocation() error {
	return c.Session.ChannelMessageDelete(c.Message.ChannelID, c.Message.ID)
}
