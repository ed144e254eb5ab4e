package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/quickshop/storefront/internal/domain/catalog"
)

// The persisted record is a single JSON object holding only the cart:
//
//	{"cart":[{"product":{...},"quantity":2}]}
//
// Aggregates are intentionally not stored; they are recomputed from the
// items on load. Prices are written as JSON strings so decimal values
// round-trip without float drift. There is no format version; a breaking
// change to this layout requires a storage key rename.

// Encode serializes items into the persisted cart record.
func Encode(items Items) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("cart", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					encodeItem(e, it)
				}
			})
		})
	})
	return e.Bytes()
}

func encodeItem(e *jx.Encoder, it Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product", func(e *jx.Encoder) {
			encodeProduct(e, it.Product)
		})
		e.Field("quantity", func(e *jx.Encoder) {
			e.Int(it.Quantity)
		})
	})
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(p.Title) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.String()) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("rating", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("rate", func(e *jx.Encoder) { e.Float64(p.Rating.Rate) })
				e.Field("count", func(e *jx.Encoder) { e.Int(p.Rating.Count) })
			})
		})
	})
}

// Decode parses a persisted cart record. Unknown fields are skipped so the
// decoder tolerates records written with extra (for example cached aggregate)
// fields. Lines with a non-positive quantity are dropped.
func Decode(data []byte) (Items, error) {
	var items Items
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "cart" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			it, err := decodeItem(d)
			if err != nil {
				return err
			}
			if it.Quantity > 0 {
				items = append(items, it)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode cart record")
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var it Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product":
			p, err := decodeProduct(d)
			if err != nil {
				return err
			}
			it.Product = p
			return nil
		case "quantity":
			q, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "quantity")
			}
			it.Quantity = q
			return nil
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "title":
			p.Title, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			p.Price, err = decodePrice(d)
		case "category":
			p.Category, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "rating":
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "rate":
					p.Rating.Rate, err = d.Float64()
				case "count":
					p.Rating.Count, err = d.Int()
				default:
					return d.Skip()
				}
				return err
			})
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return p, err
}

// decodePrice accepts both the string form this codec writes and a bare JSON
// number, which older records used.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Zero, errors.New("price: expected string or number")
	}
}
