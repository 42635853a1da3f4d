// Package party resolves counterparty tax identifiers (IDNO) to known
// customer or supplier identities. Resolution is a capability the
// import core consumes through an interface: an unknown IDNO is a
// valid outcome, not an error.
package party

// Direction is the money direction of the transaction being resolved.
type Direction int

const (
	// Incoming money resolves against customers.
	Incoming Direction = iota
	// Outgoing money resolves against suppliers.
	Outgoing
)

// Type is the kind of resolved party.
type Type string

const (
	TypeCustomer Type = "Customer"
	TypeSupplier Type = "Supplier"
)

// Party is a resolved counterparty identity.
type Party struct {
	Type Type
	Name string
}

// Resolver maps a tax identifier to a known party for a direction.
type Resolver interface {
	Resolve(taxID string, d Direction) (Party, bool)
}

// Entry is one row of the configured party registry.
type Entry struct {
	Name     string `yaml:"name"`
	TaxID    string `yaml:"tax_id"`
	Customer bool   `yaml:"customer,omitempty"`
	Supplier bool   `yaml:"supplier,omitempty"`
}

// Registry is a Resolver over a static list of configured parties.
type Registry struct {
	customers map[string]string
	suppliers map[string]string
}

// NewRegistry builds a Registry from configured entries. When several
// entries share a tax id, the first one wins.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{
		customers: make(map[string]string),
		suppliers: make(map[string]string),
	}
	for _, e := range entries {
		if e.TaxID == "" {
			continue
		}
		if e.Customer {
			if _, ok := r.customers[e.TaxID]; !ok {
				r.customers[e.TaxID] = e.Name
			}
		}
		if e.Supplier {
			if _, ok := r.suppliers[e.TaxID]; !ok {
				r.suppliers[e.TaxID] = e.Name
			}
		}
	}
	return r
}

// Resolve looks up a tax id: incoming money against customers,
// outgoing against suppliers.
func (r *Registry) Resolve(taxID string, d Direction) (Party, bool) {
	if taxID == "" {
		return Party{}, false
	}
	switch d {
	case Incoming:
		if name, ok := r.customers[taxID]; ok {
			return Party{Type: TypeCustomer, Name: name}, true
		}
	case Outgoing:
		if name, ok := r.suppliers[taxID]; ok {
			return Party{Type: TypeSupplier, Name: name}, true
		}
	}
	return Party{}, false
}
