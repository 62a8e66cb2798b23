package messaging

import (
	"context"
)

const ProductsCreatedSubject = "products.created"

// Attribute data types understood by the notification topic's filter policies.
const (
	DataTypeString = "String"
	DataTypeNumber = "Number"
)

// Attribute is a typed message attribute carried next to the body so subscribers can filter without decoding it.
type Attribute struct {
	DataType string
	Value    string
}

type Event interface {
	Subject() string
	Payload() ([]byte, error)
	Attributes() map[string]Attribute
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
