package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	// Inventory
	&Product{},
	&SalesOrder{},
	&OrderItem{},
}
