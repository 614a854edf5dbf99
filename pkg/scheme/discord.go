package scheme

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// DiscordTimestamp decodes a Discord snowflake with discordgo's own helper, independent of the
// bit extraction path, so results for the discord scheme can be cross-checked.
func DiscordTimestamp(id string) (time.Time, error) {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
