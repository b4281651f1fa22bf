package esimaccess

// PackageListRequest filters the supplier package list. Empty fields list everything.
type PackageListRequest struct {
	LocationCode string `json:"locationCode"`
	Type         string `json:"type"`
	PackageCode  string `json:"packageCode"`
}

// PackageInfo is one line of an order.
type PackageInfo struct {
	PackageCode string `json:"packageCode"`
	Count       int    `json:"count"`
	Price       int64  `json:"price,omitempty"`
}

// OrderRequest places an order for one or more profiles.
type OrderRequest struct {
	TransactionID   string        `json:"transactionId"`
	Amount          int64         `json:"amount,omitempty"`
	PackageInfoList []PackageInfo `json:"packageInfoList"`
}

// Pager selects a page of a query.
type Pager struct {
	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
}

// QueryRequest lists the profiles allocated to an order.
type QueryRequest struct {
	OrderNo string `json:"orderNo"`
	Pager   Pager  `json:"pager"`
}

// ProfileRequest addresses a single profile by ICCID.
type ProfileRequest struct {
	ICCID string `json:"iccid"`
}

// TopupRequest adds a package to an existing profile.
type TopupRequest struct {
	ICCID         string `json:"iccid"`
	PackageCode   string `json:"packageCode"`
	TransactionID string `json:"transactionId"`
}
