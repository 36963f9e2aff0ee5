package domain

// Endpoint identifies one assistant operation. Model pinning, limits and
// decoder metrics are all keyed by it.
type Endpoint string

const (
	EndpointChat      Endpoint = "chat"
	EndpointSuggest   Endpoint = "suggest"
	EndpointValidate  Endpoint = "validate"
	EndpointNormalize Endpoint = "normalize"
	EndpointReceipt   Endpoint = "receipt"
)

func (e Endpoint) String() string { return string(e) }

func (e Endpoint) IsValid() bool {
	switch e {
	case EndpointChat, EndpointSuggest, EndpointValidate, EndpointNormalize, EndpointReceipt:
		return true
	}
	return false
}

// AllEndpoints lists every endpoint in a stable order.
func AllEndpoints() []Endpoint {
	return []Endpoint{EndpointChat, EndpointSuggest, EndpointValidate, EndpointNormalize, EndpointReceipt}
}

// ChatRole is the speaker of a transcript turn as the client names it.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

func (r ChatRole) String() string { return string(r) }

func (r ChatRole) IsValid() bool {
	switch r {
	case ChatRoleUser, ChatRoleAssistant:
		return true
	}
	return false
}

// UncategorizedCategory is the spend bucket for purchases without a category.
const UncategorizedCategory = "Uncategorized"

// Fallback values used when an item name cannot be normalized by the model.
const (
	DefaultCategory = "Other"
	DefaultUnit     = "pcs"
)

// Categories is the canonical category list offered to the model.
var Categories = []string{
	"Produce",
	"Dairy",
	"Meat & Fish",
	"Bakery",
	"Pantry",
	"Frozen",
	"Beverages",
	"Snacks",
	"Household",
	"Personal Care",
	"Baby",
	"Pets",
	DefaultCategory,
}

// Units is the canonical unit list offered to the model.
var Units = []string{"pcs", "kg", "g", "l", "ml", "pack", "bottle", "can", "box", "bunch", "dozen"}
