package tsme

import (
	"fmt"
	"sort"
)

// Endpoints names the portal paths used by a client, relative to BaseURL.
type Endpoints struct {
	BaseURL    string
	Login      string
	Dashboard  string
	MetersList string
	Metering   string
}

var SuezEndpoints = Endpoints{
	BaseURL:    "https://www.toutsurmoneau.fr",
	Login:      "/mon-compte-en-ligne/je-me-connecte",
	Dashboard:  "/mon-compte-en-ligne/tableau-de-bord",
	MetersList: "/public-api/cel-consumption/meters-list",
	Metering:   "/public-api/cel-consumption/telemetry",
}

type providerFactory func(email, password string) (*Client, error)

var providers = map[string]providerFactory{
	"suez": NewSuezClient,
}

func NewSuezClient(email, password string) (*Client, error) {
	return NewClient(SuezEndpoints, email, password)
}

// NewProviderClient builds a client for the provider registered under name.
func NewProviderClient(name, email, password string) (*Client, error) {
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (expected one of %v)", ErrUnknownProvider, name, Providers())
	}
	return factory(email, password)
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
