package screens

import (
	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
)

func init() {
	core.Register(core.Screen{
		Key:       "products",
		Group:     "Catalog",
		Label:     "Products",
		Singular:  "Product",
		Order:     1,
		APIPath:   "/admin/products",
		Envelope:  api.NestedPagination,
		Mode:      core.PaginateServer,
		SearchKey: "name",
		Uploads:   []string{"product-image", "product-datasheet"},
	})

	core.Register(core.Screen{
		Key:       "brands",
		Group:     "Catalog",
		Label:     "Brands",
		Singular:  "Brand",
		Order:     2,
		APIPath:   "/admin/brands",
		Envelope:  api.FlatTotalData,
		Mode:      core.PaginateClient,
		SearchKey: "name",
		Uploads:   []string{"brand-logo"},
	})
}
