package commands

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

const cooldown2s = 2 * time.Second

func floatPtr(v float64) *float64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

// Descriptors lists every command the bot serves.
var Descriptors = []*Descriptor{
	GCreateDescriptor,
	GEditDescriptor,
	GEndDescriptor,
	GListDescriptor,
	HelpDescriptor,
	PingDescriptor,
	SettingsDescriptor,
}

var lookup = buildLookup(Descriptors)

func buildLookup(ds []*Descriptor) map[string]*Descriptor {
	m := make(map[string]*Descriptor)
	for _, d := range ds {
		m[d.Name] = d
		for _, a := range d.Aliases {
			m[a] = d
		}
	}
	return m
}

// Lookup resolves a command name or alias.
func Lookup(name string) (*Descriptor, bool) {
	d, ok := lookup[name]
	return d, ok
}

// Commands returns the slash commands to register.
func Commands() []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(Descriptors))
	for _, d := range Descriptors {
		if d.Slash != nil {
			cmds = append(cmds, d.Slash)
		}
	}
	return cmds
}
