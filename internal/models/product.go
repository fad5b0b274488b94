package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Dimensions struct {
	Length float64 `bson:"length" json:"length"`
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice float64            `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	CountInStock  int                `bson:"countInStock" json:"countInStock"`
	SKU           string             `bson:"sku" json:"sku"`
	Category      string             `bson:"category" json:"category"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Sizes         StringList         `bson:"sizes" json:"sizes"`
	Colors        StringList         `bson:"colors" json:"colors"`
	Collections   string             `bson:"collections" json:"collections"`
	Gender        string             `bson:"gender,omitempty" json:"gender,omitempty"`
	Material      string             `bson:"material,omitempty" json:"material,omitempty"`
	Images        ProductImages      `bson:"images" json:"images"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	IsPublished   bool               `bson:"isPublished" json:"isPublished"`
	Tags          StringList         `bson:"tags,omitempty" json:"tags,omitempty"`
	Dimensions    *Dimensions        `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Weight        float64            `bson:"weight,omitempty" json:"weight,omitempty"`
	User          primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryImage is the image copied into cart lines.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
