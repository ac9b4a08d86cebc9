package providers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mfinkle/llm-agents/tools"
)

type store struct {
	ID          string
	Name        string
	Type        string
	Address     string
	Coordinates coordinates
	Hours       string
	Phone       string
	Services    []string
}

// StoreLocatorProvider offers store lookup tools over a static
// store directory.
type StoreLocatorProvider struct {
	stores []*store
}

var _ tools.Provider = (*StoreLocatorProvider)(nil)

// NewStoreLocatorProvider returns a store locator with a seeded
// directory of Springfield and Shelbyville stores.
func NewStoreLocatorProvider() *StoreLocatorProvider {
	return &StoreLocatorProvider{
		stores: []*store{
			{"1", "Super Foods", "grocery", "123 Main St, Springfield, IL", coordinates{39.78, -89.65}, "8:00 AM - 10:00 PM", "555-123-4567", []string{"Deli", "Bakery", "Pharmacy"}},
			{"2", "Fresh Market", "grocery", "456 Oak Ave, Springfield, IL", coordinates{39.76, -89.64}, "7:00 AM - 9:00 PM", "555-234-5678", []string{"Organic Produce", "Wine Selection"}},
			{"3", "Luxury Furnishings", "furniture", "789 Elm Blvd, Springfield, IL", coordinates{39.79, -89.68}, "10:00 AM - 8:00 PM", "555-345-6789", []string{"Interior Design", "Delivery"}},
			{"4", "Home Essentials", "furniture", "101 Pine St, Springfield, IL", coordinates{39.77, -89.66}, "9:00 AM - 7:00 PM", "555-456-7890", []string{"Assembly", "Financing"}},
			{"5", "Tech World", "electronics", "202 Maple Dr, Springfield, IL", coordinates{39.75, -89.63}, "10:00 AM - 9:00 PM", "555-567-8901", []string{"Repairs", "Tech Support"}},
			{"6", "Gadget Zone", "electronics", "303 Cedar Ln, Springfield, IL", coordinates{39.74, -89.67}, "9:00 AM - 8:00 PM", "555-678-9012", []string{"Trade-ins", "Custom Orders"}},
			{"7", "Organic Grocers", "grocery", "404 Birch Rd, Shelbyville, IL", coordinates{39.81, -89.70}, "8:00 AM - 8:00 PM", "555-789-0123", []string{"Organic Produce", "Bulk Foods"}},
			{"8", "Modern Home", "furniture", "505 Walnut Ave, Shelbyville, IL", coordinates{39.82, -89.71}, "10:00 AM - 7:00 PM", "555-890-1234", []string{"Design Consultation", "Custom Orders"}},
			{"9", "Electronics Emporium", "electronics", "606 Spruce St, Shelbyville, IL", coordinates{39.83, -89.72}, "9:00 AM - 9:00 PM", "555-901-2345", []string{"Extended Warranties", "Installation"}},
			{"10", "Discount Grocers", "grocery", "707 Aspen Blvd, Shelbyville, IL", coordinates{39.84, -89.73}, "7:00 AM - 11:00 PM", "555-012-3456", []string{"Bulk Foods", "Hot Food Bar"}},
		},
	}
}

// Name implements the Provider interface.
func (p *StoreLocatorProvider) Name() string {
	return "StoreLocatorToolProvider"
}

// GetTools implements the Provider interface.
func (p *StoreLocatorProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_store_types",
			Description: `Gets the list of available store types. No parameter is needed. Example: { "type": "call_tool", "tool": "get_store_types" }`,
			Response:    `Returns a list of store types. Example: ["grocery", "furniture", "electronics"]`,
			Param: &tools.ParamInfo{
				Required:    false,
				Description: "No parameter needed",
			},
			Func: func(_ context.Context, _ any) (any, error) {
				return p.getTypes(), nil
			},
		},
		{
			Name:        "get_stores_by_type",
			Description: `Gets the stores of a specific type. Parameter should be a string containing the store type. Example: { "type": "call_tool", "tool": "get_stores_by_type", "param": "grocery" }`,
			Response:    `Returns a list of stores of the specified type. Example: [{"id": "1", "name": "Super Foods", "address": "123 Main St, Springfield, IL"}]`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Store type as a string (e.g., "grocery", "furniture", "electronics")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getByType(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "get_stores_by_name",
			Description: `Gets the stores of a specific name. Parameter should be a string containing the store name. Example: { "type": "call_tool", "tool": "get_stores_by_name", "param": "Super Foods" }`,
			Response:    `Returns a list of stores with the specified name. Example: [{"id": "1", "name": "Super Foods", "address": "123 Main St, Springfield, IL"}]`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "Store name as a string",
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getByName(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "find_nearest_store",
			Description: `Finds the nearest store based on the provided location and optional store type. Parameters should be provided as an object with "location" (required) and "store_type" (optional) fields. Example: { "type": "call_tool", "tool": "find_nearest_store", "param": {"location": "Springfield, IL", "store_type": "grocery"} }`,
			Response:    `Returns the nearest store. Example: {"id": "1", "name": "Super Foods", "address": "123 Main St, Springfield, IL", "distance": "0.5 miles"}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamObject,
				Description: `An object with "location" (required) and "store_type" (optional) fields`,
				Schema: map[string]string{
					"location":   `String representing the location (e.g., "Springfield, IL")`,
					"store_type": `Optional string representing the store type (e.g., "grocery")`,
				},
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.findNearest(tools.ObjectParam(param)), nil
			},
		},
		{
			Name:        "get_store_details",
			Description: `Gets detailed information about a specific store. Parameter should be a string containing the store ID. Example: { "type": "call_tool", "tool": "get_store_details", "param": "1" }`,
			Response:    `Returns detailed information about the store. Example: {"id": "1", "name": "Super Foods", "type": "grocery", "address": "123 Main St, Springfield, IL", "hours": "8:00 AM - 10:00 PM", "phone": "555-123-4567", "services": ["Deli", "Bakery", "Pharmacy"]}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Store ID as a string (e.g., "1")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getDetails(tools.StringParam(param)), nil
			},
		},
	}
}

func (p *StoreLocatorProvider) getTypes() []string {
	seen := map[string]bool{}
	var types []string
	for _, s := range p.stores {
		if !seen[s.Type] {
			seen[s.Type] = true
			types = append(types, s.Type)
		}
	}
	return types
}

func (p *StoreLocatorProvider) getByType(storeType string) []map[string]any {
	matching := []map[string]any{}
	for _, s := range p.stores {
		if strings.EqualFold(s.Type, storeType) {
			matching = append(matching, map[string]any{
				"id":      s.ID,
				"name":    s.Name,
				"address": s.Address,
			})
		}
	}
	return matching
}

func (p *StoreLocatorProvider) getByName(name string) []map[string]any {
	matching := []map[string]any{}
	for _, s := range p.stores {
		if strings.EqualFold(s.Name, name) {
			matching = append(matching, map[string]any{
				"id":      s.ID,
				"name":    s.Name,
				"address": s.Address,
			})
		}
	}
	return matching
}

// findNearest ranks stores by distance from a simulated geocoding of
// the location, optionally filtered by store type.
func (p *StoreLocatorProvider) findNearest(param map[string]any) map[string]any {
	location, _ := param["location"].(string)
	storeType, _ := param["store_type"].(string)

	if location == "" {
		return map[string]any{"error": "Location is required to find nearest store"}
	}

	// Simulated coordinates, centered in Springfield.
	origin := coordinates{Lat: 39.78, Long: -89.65}

	filtered := p.stores
	if storeType != "" {
		var matched []*store
		for _, s := range p.stores {
			if strings.EqualFold(s.Type, storeType) {
				matched = append(matched, s)
			}
		}
		if len(matched) > 0 {
			filtered = matched
		}
	}

	type ranked struct {
		store    *store
		distance float64
	}
	var candidates []ranked
	for _, s := range filtered {
		latDiff := s.Coordinates.Lat - origin.Lat
		longDiff := s.Coordinates.Long - origin.Long
		// rough conversion of degrees to miles
		miles := math.Sqrt(latDiff*latDiff+longDiff*longDiff) * 69
		candidates = append(candidates, ranked{store: s, distance: miles})
	}
	if len(candidates) == 0 {
		return map[string]any{"error": "No stores found"}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	nearest := candidates[0]
	return map[string]any{
		"id":       nearest.store.ID,
		"name":     nearest.store.Name,
		"address":  nearest.store.Address,
		"type":     nearest.store.Type,
		"distance": fmt.Sprintf("%.1f miles", nearest.distance),
	}
}

func (p *StoreLocatorProvider) getDetails(id string) map[string]any {
	for _, s := range p.stores {
		if s.ID == id {
			return map[string]any{
				"id":       s.ID,
				"name":     s.Name,
				"type":     s.Type,
				"address":  s.Address,
				"hours":    s.Hours,
				"phone":    s.Phone,
				"services": s.Services,
			}
		}
	}
	return map[string]any{"error": "Store not found."}
}
