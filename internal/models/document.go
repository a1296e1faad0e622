package models

// DocumentKey addresses a document in the document store.
type DocumentKey struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

func (k DocumentKey) String() string {
	return k.Collection + "/" + k.ID
}

var (
	PricingDocument      = DocumentKey{Collection: "configs", ID: "hotel_pricing"}
	GlobalConfigDocument = DocumentKey{Collection: "configs", ID: "global_configs"}
)
