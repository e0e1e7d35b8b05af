// Package catalog manages the instrument registry (admin CRUD + the
// RUB reservation rule of spec §3). List is fronted by a short-TTL
// cache (SPEC_FULL §2 component 13) for the public instrument list;
// Exists reads the registry directly.
package catalog

import (
	"regexp"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/abdoElHodaky/exchange-core/internal/errs"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{2,10}$`)

// Quote is the reserved quote-currency asset. Never registerable.
const Quote = "RUB"

// Instrument is a tradeable ticker.
type Instrument struct {
	Ticker string
	Name   string
}

// Persister durably records catalog mutations.
type Persister interface {
	SaveInstrument(i Instrument)
	DeleteInstrument(ticker string)
}

type noopPersister struct{}

func (noopPersister) SaveInstrument(Instrument) {}
func (noopPersister) DeleteInstrument(string)   {}

// Catalog is the admin-managed instrument registry.
type Catalog struct {
	mu          sync.RWMutex
	instruments map[string]Instrument
	cache       *gocache.Cache
	persister   Persister
}

func New(persister Persister) *Catalog {
	if persister == nil {
		persister = noopPersister{}
	}
	return &Catalog{
		instruments: make(map[string]Instrument),
		cache:       gocache.New(5*time.Second, 30*time.Second),
		persister:   persister,
	}
}

// ValidTicker checks the format of spec §6: ^[A-Z]{2,10}$.
func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}

// Create registers a new instrument. RUB may never be registered
// (spec §3); duplicates fail with InstrumentExists.
func (c *Catalog) Create(ticker, name string) error {
	if !ValidTicker(ticker) {
		return errs.New(errs.Validation, "ticker must match ^[A-Z]{2,10}$")
	}
	if ticker == Quote {
		return errs.New(errs.Validation, "RUB is reserved and may not be registered as an instrument")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.instruments[ticker]; exists {
		return errs.New(errs.InstrumentExists, "instrument already exists")
	}
	inst := Instrument{Ticker: ticker, Name: name}
	c.instruments[ticker] = inst
	c.cache.Flush()
	c.persister.SaveInstrument(inst)
	return nil
}

// Delete removes an instrument.
func (c *Catalog) Delete(ticker string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.instruments[ticker]; !exists {
		return errs.New(errs.NotFound, "instrument not found")
	}
	delete(c.instruments, ticker)
	c.cache.Flush()
	c.persister.DeleteInstrument(ticker)
	return nil
}

// Exists reports whether ticker is a known, non-RUB instrument.
func (c *Catalog) Exists(ticker string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instruments[ticker]
	return ok
}

// List returns every registered instrument, cached briefly since the
// public endpoint is read far more often than instruments change.
func (c *Catalog) List() []Instrument {
	if cached, ok := c.cache.Get("list"); ok {
		return cached.([]Instrument)
	}
	c.mu.RLock()
	out := make([]Instrument, 0, len(c.instruments))
	for _, i := range c.instruments {
		out = append(out, i)
	}
	c.mu.RUnlock()
	c.cache.Set("list", out, gocache.DefaultExpiration)
	return out
}
