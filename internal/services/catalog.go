package services

import (
	"context"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"github.com/shabeebkaip/polymerhub-backend/pkg/errors"
	"gorm.io/gorm"
)

// Counterpart is who sits on the other side of a conversation context, with
// enough of a summary for the client to render a thread header.
type Counterpart struct {
	CounterpartID string `json:"counterpartId"`
	ContextType   string `json:"contextType"` // "product" or "deal"
	ContextID     string `json:"contextId"`
	ContextName   string `json:"contextName"`
}

// Catalog is the relay's window into the marketplace's catalog/workflow
// domain. Listing management, quoting and approvals live elsewhere; the relay
// only asks it one question: who is the counterpart for this context.
type Catalog struct {
	DB *gorm.DB
}

// ResolveCounterpartByProduct resolves the seller of a product as the
// counterpart for a buyer opening a product-scoped conversation.
func (c *Catalog) ResolveCounterpartByProduct(ctx context.Context, productID, requesterID string) (*Counterpart, error) {
	var product models.Product
	if err := c.DB.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("product not found")
		}
		return nil, err
	}
	if product.SellerID == requesterID {
		return nil, errors.BadRequest("sellers cannot open a conversation on their own listing")
	}
	return &Counterpart{
		CounterpartID: product.SellerID,
		ContextType:   "product",
		ContextID:     product.ID,
		ContextName:   product.Name,
	}, nil
}

// ResolveCounterpartByDeal resolves the other party of a deal the requester
// participates in.
func (c *Catalog) ResolveCounterpartByDeal(ctx context.Context, dealID, requesterID string) (*Counterpart, error) {
	var deal models.Deal
	if err := c.DB.WithContext(ctx).Preload("Product").First(&deal, "id = ?", dealID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("deal not found")
		}
		return nil, err
	}

	var counterpart string
	switch requesterID {
	case deal.BuyerID:
		counterpart = deal.SellerID
	case deal.SellerID:
		counterpart = deal.BuyerID
	default:
		return nil, errors.Forbidden("requester is not part of this deal")
	}

	return &Counterpart{
		CounterpartID: counterpart,
		ContextType:   "deal",
		ContextID:     deal.ID,
		ContextName:   deal.Product.Name,
	}, nil
}
