package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerUser
	OwnerGuest
)

// CartOwner identifies who a cart belongs to: a registered user or a
// transient guest. The zero value owns nothing.
type CartOwner struct {
	kind    OwnerKind
	userID  primitive.ObjectID
	guestID string
}

func UserOwner(id primitive.ObjectID) CartOwner {
	return CartOwner{kind: OwnerUser, userID: id}
}

func GuestOwner(id string) CartOwner {
	return CartOwner{kind: OwnerGuest, guestID: id}
}

func (o CartOwner) Kind() OwnerKind { return o.kind }

func (o CartOwner) IsZero() bool {
	switch o.kind {
	case OwnerUser:
		return o.userID.IsZero()
	case OwnerGuest:
		return o.guestID == ""
	default:
		return true
	}
}

func (o CartOwner) UserID() (primitive.ObjectID, bool) {
	return o.userID, o.kind == OwnerUser
}

func (o CartOwner) GuestID() (string, bool) {
	return o.guestID, o.kind == OwnerGuest
}

// Filter is the lookup document for the single cart of this owner.
func (o CartOwner) Filter() bson.M {
	if o.kind == OwnerUser {
		return bson.M{"user": o.userID}
	}
	return bson.M{"guestId": o.guestID}
}

// Key is a stable string form used for cache keys and logs.
func (o CartOwner) Key() string {
	switch o.kind {
	case OwnerUser:
		return "user:" + o.userID.Hex()
	case OwnerGuest:
		return "guest:" + o.guestID
	default:
		return "none"
	}
}

func (o CartOwner) String() string {
	return fmt.Sprintf("CartOwner(%s)", o.Key())
}
