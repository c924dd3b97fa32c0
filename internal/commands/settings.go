package commands

import (
	"discord-giveaways/internal/commands/framework"
	"discord-giveaways/internal/models"
	"discord-giveaways/internal/utils"
	"errors"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const maxPrefixLength = 5

var Settings = &discordgo.ApplicationCommand{
	Name:                     "settings",
	Description:              "View or change the server settings.",
	DMPermission:             boolPtr(false),
	DefaultMemberPermissions: int64Ptr(discordgo.PermissionManageGuild),
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "key",
			Description: "Setting to change.",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "prefix", Value: "prefix"},
				{Name: "language", Value: "language"},
				{Name: "plugin", Value: "plugin"},
				{Name: "clear", Value: "clear"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "value",
			Description: "New value, e.g. `!`, `es-ES` or `Giveaway off`.",
		},
	},
}

// RunPrefix and RunSlash are set in init, plugin names come from the registry.
var SettingsDescriptor = &Descriptor{
	Name:      "settings",
	Aliases:   []string{"config"},
	Category:  "Misc",
	GuildOnly: true,
	Usage:     "general/settings:USAGE",
	Examples: []string{
		"settings",
		"settings prefix !",
		"settings language es-ES",
		"settings plugin Giveaway off",
		"settings clear on",
	},
	UserPermissions: discordgo.PermissionManageGuild,
	BotPermissions:  discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	Cooldown:        cooldown2s,
	Slash:           Settings,
}

func init() {
	SettingsDescriptor.RunPrefix = SettingsCmd
	SettingsDescriptor.RunSlash = SettingsCmd
}

var errInvalidSetting = errors.New("invalid setting")

// SettingsCmd shows the guild settings, or changes one of them with
// "settings <key> <value...>".
func SettingsCmd(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	key, values := settingsArgs(ctx)
	if key == "" {
		showSettings(ctx, settings, deps)
		return
	}
	if deps.Settings == nil {
		ReplyError(ctx, settings, deps, "misc:ERROR_MESSAGE", map[string]any{"ERROR": "settings are read-only"})
		return
	}

	updated := *settings
	updated.GuildID = ctx.GetGuildID()
	updated.Plugins = slices.Clone(settings.Plugins)

	var shown string
	switch key {
	case "prefix":
		if len(values) != 1 || len(values[0]) > maxPrefixLength {
			ReplyError(ctx, settings, deps, "general/settings:INVALID_PREFIX", map[string]any{"MAX": maxPrefixLength})
			return
		}
		updated.Prefix, shown = values[0], values[0]
	case "language":
		lang, ok := matchLanguage(deps.Languages, values)
		if !ok {
			ReplyError(ctx, settings, deps, "general/settings:UNKNOWN_LANGUAGE", map[string]any{
				"LANGUAGES": strings.Join(sorted(deps.Languages), ", "),
			})
			return
		}
		updated.Language, shown = lang, lang
	case "plugin":
		if len(values) != 2 {
			usageError(ctx, settings, deps, "general/settings:USAGE")
			return
		}
		plugin, ok := matchPlugin(values[0])
		on, err := parseToggle(values[1])
		if !ok || err != nil {
			ReplyError(ctx, settings, deps, "general/settings:UNKNOWN_PLUGIN", map[string]any{
				"PLUGINS": strings.Join(pluginNames(), ", "),
			})
			return
		}
		updated.Plugins = togglePlugin(updated.Plugins, plugin, on)
		shown = plugin + " " + values[1]
	case "clear":
		on, err := parseToggle(strings.Join(values, " "))
		if err != nil {
			usageError(ctx, settings, deps, "general/settings:USAGE")
			return
		}
		updated.ModerationClearToggle, shown = on, strings.ToLower(values[0])
	default:
		usageError(ctx, settings, deps, "general/settings:USAGE")
		return
	}

	if err := deps.Settings.Update(ctx.Context(), &updated); err != nil {
		deps.Logger.Error("failed to update guild settings", zap.String("key", key), zap.Error(err))
		ReplyError(ctx, settings, deps, "misc:ERROR_MESSAGE", map[string]any{"ERROR": err.Error()})
		return
	}

	// Confirm in the language the guild just switched to.
	replySuccess(ctx, &updated, deps, "general/settings:UPDATED", map[string]any{"KEY": key, "VALUE": shown})
}

func settingsArgs(ctx framework.Context) (string, []string) {
	if args := ctx.GetArgs(); len(args) > 0 {
		return strings.ToLower(args[0]), args[1:]
	}
	opts := optionMap(ctx.GetOptions())
	var key string
	if opt, ok := opts["key"]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		key = opt.StringValue()
	}
	var values []string
	if opt, ok := opts["value"]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		values = strings.Fields(opt.StringValue())
	}
	return key, values
}

func showSettings(ctx framework.Context, settings *models.GuildSettings, deps *Deps) {
	none := deps.tr(settings, "general/settings:NONE", nil)
	plugins := none
	if len(settings.Plugins) > 0 {
		plugins = "`" + strings.Join(settings.Plugins, "`, `") + "`"
	}
	toggle := "off"
	if settings.ModerationClearToggle {
		toggle = "on"
	}

	embed := &discordgo.MessageEmbed{
		Title: deps.tr(settings, "general/settings:TITLE", nil),
		Color: utils.ColorDark,
		Fields: []*discordgo.MessageEmbedField{
			{Name: deps.tr(settings, "general/settings:PREFIX", nil), Value: "`" + settings.Prefix + "`", Inline: true},
			{Name: deps.tr(settings, "general/settings:LANGUAGE", nil), Value: "`" + settings.Language + "`", Inline: true},
			{Name: deps.tr(settings, "general/settings:CLEAR", nil), Value: "`" + toggle + "`", Inline: true},
			{Name: deps.tr(settings, "general/settings:PLUGINS", nil), Value: plugins},
		},
	}
	if _, err := ctx.ReplyEmbed(embed); err != nil {
		deps.Logger.Debug("failed to send settings", zap.Error(err))
	}
}

func matchLanguage(langs, values []string) (string, bool) {
	if len(values) != 1 {
		return "", false
	}
	for _, l := range langs {
		if strings.EqualFold(l, values[0]) {
			return l, true
		}
	}
	return "", false
}

// pluginNames lists the command categories a guild can switch off.
func pluginNames() []string {
	var names []string
	for _, d := range Descriptors {
		if d.Category != "Misc" && !slices.Contains(names, d.Category) {
			names = append(names, d.Category)
		}
	}
	slices.Sort(names)
	return names
}

func matchPlugin(name string) (string, bool) {
	for _, p := range pluginNames() {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	return "", false
}

func togglePlugin(plugins []string, name string, on bool) []string {
	has := slices.Contains(plugins, name)
	switch {
	case on && !has:
		return append(plugins, name)
	case !on && has:
		return slices.DeleteFunc(plugins, func(p string) bool { return p == name })
	}
	return plugins
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "enable", "true":
		return true, nil
	case "off", "disable", "false":
		return false, nil
	}
	return false, errInvalidSetting
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
