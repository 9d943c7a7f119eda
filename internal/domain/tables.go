package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysOprLog{},
	&SiteConfig{},
	// Store
	&Product{},
	&Order{},
	&SaleItem{},
	&Consultation{},
}
