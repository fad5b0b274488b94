package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type ProductImage struct {
	URL     string `bson:"url" json:"url"`
	AltText string `bson:"altText,omitempty" json:"altText,omitempty"`
}

// ProductImages decodes image lists stored either as plain URL strings or
// as {url, altText} documents; some seeded catalogs mix both.
type ProductImages []ProductImage

func (s *ProductImages) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = nil
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*s = ProductImages{{URL: trimmed}}
		} else {
			*s = ProductImages{}
		}
		return nil
	case bsontype.Array:
		values, err := bson.Raw(data).Values()
		if err != nil {
			return err
		}
		images := make(ProductImages, 0, len(values))
		for _, value := range values {
			switch value.Type {
			case bsontype.String:
				if url := strings.TrimSpace(value.StringValue()); url != "" {
					images = append(images, ProductImage{URL: url})
				}
			case bsontype.EmbeddedDocument:
				var image ProductImage
				if err := value.Unmarshal(&image); err != nil {
					return err
				}
				images = append(images, image)
			default:
				return fmt.Errorf("cannot decode %s into ProductImage", value.Type)
			}
		}
		*s = images
		return nil
	default:
		return fmt.Errorf("cannot decode %s into ProductImages", t)
	}
}

// MarshalBSONValue always writes the document form.
func (s ProductImages) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s == nil {
		return bson.MarshalValue([]ProductImage{})
	}
	return bson.MarshalValue([]ProductImage(s))
}

// UnmarshalJSON accepts the same shapes from request bodies.
func (s *ProductImages) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if json.Unmarshal(data, &single) != nil {
			return err
		}
		*s = ProductImages{}
		if trimmed := strings.TrimSpace(single); trimmed != "" {
			*s = ProductImages{{URL: trimmed}}
		}
		return nil
	}
	if raw == nil {
		*s = nil
		return nil
	}

	images := make(ProductImages, 0, len(raw))
	for _, item := range raw {
		var url string
		if json.Unmarshal(item, &url) == nil {
			if url = strings.TrimSpace(url); url != "" {
				images = append(images, ProductImage{URL: url})
			}
			continue
		}
		var image ProductImage
		if err := json.Unmarshal(item, &image); err != nil {
			return err
		}
		images = append(images, image)
	}
	*s = images
	return nil
}
