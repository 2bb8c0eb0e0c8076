package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// UserInfo contains display information for a Discord member.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider resolves requester IDs into display names and avatars.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
