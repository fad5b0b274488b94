package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrCartWithoutOwner = errors.New("cart document has neither user nor guestId")

// CartLine is one product variant in a cart. Name, image and price are a
// snapshot taken when the line was first added.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Matches compares the line identity: product, size and color.
func (l CartLine) Matches(productID primitive.ObjectID, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums price*quantity over lines without float drift between
// lines.
func LinesTotal(lines []CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total.InexactFloat64()
}

type Cart struct {
	ID         primitive.ObjectID
	Owner      CartOwner
	Products   []CartLine
	TotalPrice float64
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewCart(owner CartOwner, now time.Time) *Cart {
	return &Cart{
		Owner:     owner,
		Products:  []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) IsEmpty() bool { return len(c.Products) == 0 }

// FindLine returns the index of the matching line or -1.
func (c *Cart) FindLine(productID primitive.ObjectID, size, color string) int {
	for i, line := range c.Products {
		if line.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// AddLine increments the quantity of a matching line or appends the line.
func (c *Cart) AddLine(line CartLine) {
	if i := c.FindLine(line.ProductID, line.Size, line.Color); i > -1 {
		c.Products[i].Quantity += line.Quantity
	} else {
		c.Products = append(c.Products, line)
	}
	c.Recalculate()
}

// SetQuantity updates the line in place, or drops it when quantity <= 0.
// It reports false when no line matches.
func (c *Cart) SetQuantity(productID primitive.ObjectID, size, color string, quantity int) bool {
	i := c.FindLine(productID, size, color)
	if i < 0 {
		return false
	}
	if quantity > 0 {
		c.Products[i].Quantity = quantity
	} else {
		c.Products = append(c.Products[:i], c.Products[i+1:]...)
	}
	c.Recalculate()
	return true
}

func (c *Cart) RemoveLine(productID primitive.ObjectID, size, color string) bool {
	return c.SetQuantity(productID, size, color, 0)
}

// Absorb folds every line of other into c. No line is dropped; lines that
// are new to c keep the snapshot they carried in other.
func (c *Cart) Absorb(other *Cart) {
	for _, line := range other.Products {
		if i := c.FindLine(line.ProductID, line.Size, line.Color); i > -1 {
			c.Products[i].Quantity += line.Quantity
			continue
		}
		c.Products = append(c.Products, line)
	}
	c.Recalculate()
}

func (c *Cart) Recalculate() {
	c.TotalPrice = LinesTotal(c.Products)
}

// Clone returns a deep copy so callers can mutate without touching cached
// values.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Products = append([]CartLine(nil), c.Products...)
	return &cp
}

type cartDocument struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	User       *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	GuestID    string              `bson:"guestId,omitempty" json:"guestId,omitempty"`
	Products   []CartLine          `bson:"products" json:"products"`
	TotalPrice float64             `bson:"totalPrice" json:"totalPrice"`
	Version    int64               `bson:"version" json:"version"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (c Cart) document() cartDocument {
	doc := cartDocument{
		ID:         c.ID,
		Products:   c.Products,
		TotalPrice: c.TotalPrice,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if doc.Products == nil {
		doc.Products = []CartLine{}
	}
	if id, ok := c.Owner.UserID(); ok {
		doc.User = &id
	}
	if id, ok := c.Owner.GuestID(); ok {
		doc.GuestID = id
	}
	return doc
}

func (c *Cart) fromDocument(doc cartDocument) error {
	switch {
	case doc.User != nil && !doc.User.IsZero():
		c.Owner = UserOwner(*doc.User)
	case doc.GuestID != "":
		c.Owner = GuestOwner(doc.GuestID)
	default:
		return ErrCartWithoutOwner
	}
	c.ID = doc.ID
	c.Products = doc.Products
	if c.Products == nil {
		c.Products = []CartLine{}
	}
	c.TotalPrice = doc.TotalPrice
	c.Version = doc.Version
	c.CreatedAt = doc.CreatedAt
	c.UpdatedAt = doc.UpdatedAt
	return nil
}

// MarshalBSON stores the owner as either a user or a guestId field, never
// both.
func (c Cart) MarshalBSON() ([]byte, error) {
	return bson.Marshal(c.document())
}

// UnmarshalBSON accepts legacy documents that kept a stale guestId next to
// a user; the user wins.
func (c *Cart) UnmarshalBSON(data []byte) error {
	var doc cartDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	return c.fromDocument(doc)
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.document())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var doc cartDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return c.fromDocument(doc)
}
