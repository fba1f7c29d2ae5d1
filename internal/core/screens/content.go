package screens

import (
	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
)

func init() {
	core.Register(core.Screen{
		Key:       "knowledge",
		Group:     "Content",
		Label:     "Knowledge Center",
		Singular:  "Article",
		Order:     1,
		APIPath:   "/admin/knowledge-center",
		Envelope:  api.NestedPagination,
		Mode:      core.PaginateServer,
		SearchKey: "title",
		Uploads:   []string{"knowledge-file", "knowledge-thumbnail"},
	})
}
