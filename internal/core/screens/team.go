package screens

import (
	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
)

func init() {
	core.Register(core.Screen{
		Key:       "subadmins",
		Group:     "Team",
		Label:     "Sub-Admins",
		Singular:  "Sub-Admin",
		Order:     1,
		APIPath:   "/admin/sub-admins",
		Envelope:  api.FlatTotalData,
		Mode:      core.PaginateClient,
		SearchKey: "email",
	})
}
