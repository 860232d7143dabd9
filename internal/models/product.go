package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog listing. Conversations can be scoped to a product so
// the same buyer and seller talking about two products are two threads.
type Product struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"not null" json:"name"`
	Grade     string `json:"grade"`
	CASNumber string `json:"casNumber"`

	SellerID string `gorm:"index;type:text;not null" json:"sellerId"`
	Seller   User   `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

type DealStatus string

const (
	DealStatusOpen     DealStatus = "OPEN"
	DealStatusQuoted   DealStatus = "QUOTED"
	DealStatusAccepted DealStatus = "ACCEPTED"
	DealStatusClosed   DealStatus = "CLOSED"
)

// Deal is a quote/bulk-order negotiation between a buyer and a seller.
// Like Product it can act as a conversation context. The approval workflow
// around it is out of the relay's hands; we only store enough to resolve
// who sits on the other side of the table.
type Deal struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProductID string  `gorm:"index;type:text;not null" json:"productId"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	BuyerID  string `gorm:"index;type:text;not null" json:"buyerId"`
	SellerID string `gorm:"index;type:text;not null" json:"sellerId"`

	Status   DealStatus `gorm:"type:text;default:'OPEN'" json:"status"`
	Quantity float64    `json:"quantity"`
	Unit     string     `json:"unit"`
}
