package screens

import (
	"github.com/JonMunkholm/solaradmin/internal/api"
	"github.com/JonMunkholm/solaradmin/internal/core"
)

func init() {
	core.Register(core.Screen{
		Key:       "orders",
		Group:     "Sales",
		Label:     "Orders",
		Singular:  "Order",
		Order:     1,
		APIPath:   "/admin/orders",
		Envelope:  api.NestedTotalData,
		Mode:      core.PaginateServer,
		SearchKey: "customer",
		ReadOnly:  true,
		NoDelete:  true,
	})

	core.Register(core.Screen{
		Key:       "coupons",
		Group:     "Sales",
		Label:     "Coupons",
		Singular:  "Coupon",
		Order:     2,
		APIPath:   "/admin/coupons",
		Envelope:  api.NestedTotalData,
		Mode:      core.PaginateClient,
		SearchKey: "code",
	})

	core.Register(core.Screen{
		Key:       "salespersons",
		Group:     "Sales",
		Label:     "Salespersons",
		Singular:  "Salesperson",
		Order:     3,
		APIPath:   "/admin/salespersons",
		Envelope:  api.NestedTotalData,
		Mode:      core.PaginateServer,
		SearchKey: "name",
	})

	core.Register(core.Screen{
		Key:      "commissions",
		Group:    "Sales",
		Label:    "Role Commissions",
		Singular: "Role Commission",
		Order:    4,
		APIPath:  "/admin/role-commissions",
		Envelope: api.FlatTotalData,
		Mode:     core.PaginateClient,
	})
}
