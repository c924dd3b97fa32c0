package utils

const (
	// Reaction used to enter a giveaway
	EmojiGiveaway = "🎉"

	// Colors
	ColorDark  = 0x2f3136
	ColorGreen = 0x00FF00
	ColorRed   = 0xFF0000
	ColorBlack = 0x000000
)
