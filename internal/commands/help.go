package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var Help = &discordgo.ApplicationCommand{
	Name:        "help",
	Description: "Show the available commands.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "command",
			Description: "Specific command to get help for",
			Required:    false,
		},
	},
}

// RunPrefix and RunSlash are set in init, they read the registry.
var HelpDescriptor = &Descriptor{
	Name:           "help",
	Aliases:        []string{"commands", "h"},
	Category:       "Misc",
	Usage:          "general/help:USAGE",
	BotPermissions: discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:       cooldown2s,
	Slash:          Help,
}

func init() {
	HelpDescriptor.RunPrefix = HelpCmd
	HelpDescriptor.RunSlash = HelpCmd
}

func HelpCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	var name string
	if args := ctx.GetArgs(); len(args) > 0 {
		name = args[0]
	} else if opt, ok := optionMap(ctx.GetOptions())["command"]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		name = opt.StringValue()
	}

	var embed *discordgo.MessageEmbed
	if name == "" {
		embed = commandListEmbed(settings, deps)
	} else {
		d, ok := Lookup(strings.ToLower(name))
		if !ok {
			ReplyError(ctx, settings, deps, "general/help:UNKNOWN_COMMAND", map[string]any{"NAME": name})
			return
		}
		embed = commandEmbed(d, settings, deps)
	}

	if _, err := ctx.ReplyEmbed(embed); err != nil {
		deps.Logger.Debug("failed to send help", zap.Error(err))
	}
}

func commandListEmbed(settings *models.GuildSettings, deps *Deps) *discordgo.MessageEmbed {
	byCategory := make(map[string][]string)
	for _, d := range Descriptors {
		if d.Category != "Misc" && !settings.HasPlugin(d.Category) {
			continue
		}
		byCategory[d.Category] = append(byCategory[d.Category], "`"+d.Name+"`")
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fields := make([]*discordgo.MessageEmbedField, 0, len(categories))
	for _, c := range categories {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  c,
			Value: strings.Join(byCategory[c], ", "),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  deps.tr(settings, "general/help:TITLE", nil),
		Color:  utils.ColorDark,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: deps.tr(settings, "general/help:FOOTER", map[string]any{"PREFIX": settings.Prefix}),
		},
	}
}

func commandEmbed(d *Descriptor, settings *models.GuildSettings, deps *Deps) *discordgo.MessageEmbed {
	none := deps.tr(settings, "general/help:NONE", nil)

	aliases := none
	if len(d.Aliases) > 0 {
		aliases = strings.Join(d.Aliases, ", ")
	}
	examples := none
	if len(d.Examples) > 0 {
		lines := make([]string, len(d.Examples))
		for i, e := range d.Examples {
			lines[i] = fmt.Sprintf("`%s%s`", settings.Prefix, e)
		}
		examples = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       d.Name,
		Description: deps.tr(settings, descriptionKey(d), nil),
		Color:       utils.ColorDark,
		Fields: []*discordgo.MessageEmbedField{
			{Name: deps.tr(settings, "general/help:USAGE_FIELD", nil), Value: "`" + settings.Prefix + deps.tr(settings, d.Usage, nil) + "`"},
			{Name: deps.tr(settings, "general/help:ALIASES", nil), Value: aliases},
			{Name: deps.tr(settings, "general/help:EXAMPLES", nil), Value: examples},
		},
	}
}

// descriptionKey derives "ns:DESCRIPTION" from the usage key.
func descriptionKey(d *Descriptor) string {
	ns, _, _ := strings.Cut(d.Usage, ":")
	return ns + ":DESCRIPTION"
}
