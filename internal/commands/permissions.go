package commands

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

var permissionNames = map[int64]string{
	discordgo.PermissionAdministrator:      "ADMINISTRATOR",
	discordgo.PermissionManageGuild:        "MANAGE_GUILD",
	discordgo.PermissionManageMessages:     "MANAGE_MESSAGES",
	discordgo.PermissionSendMessages:       "SEND_MESSAGES",
	discordgo.PermissionEmbedLinks:         "EMBED_LINKS",
	discordgo.PermissionAddReactions:       "ADD_REACTIONS",
	discordgo.PermissionReadMessageHistory: "READ_MESSAGE_HISTORY",
	discordgo.PermissionViewChannel:        "VIEW_CHANNEL",
}

// MissingPermissions lists the names of required bits absent from have.
// Administrator implies everything.
func MissingPermissions(have, required int64) []string {
	if have&discordgo.PermissionAdministrator != 0 {
		return nil
	}
	var missing []string
	for bit, name := range permissionNames {
		if required&bit != 0 && have&bit == 0 {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
