// Package loadgen drives synthetic traffic against a vacancy server. A
// Behavior encapsulates one virtual user's action; a Runner fans workers out
// over the configured behaviors at a constant pace.
package loadgen

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hirelab/vacancyload/sdk/go/vacancy"
)

// Behavior is a single virtual-user action executed repeatedly by a worker.
// Run should return the call error, if any; workers log failures and keep
// going.
type Behavior interface {
	Name() string
	Run(ctx context.Context, client *vacancy.Client) error
}

// Namer produces unique synthetic vacancy fields. Titles must be unique
// server-side, so every draw gets a fresh sequence number.
type Namer struct {
	prefix string
	seq    atomic.Int64
}

// NewNamer creates a Namer whose titles all share the given prefix.
func NewNamer(prefix string) *Namer {
	return &Namer{prefix: prefix}
}

// NextCreate draws a unique create payload, cycling through the divisions.
func (n *Namer) NextCreate() vacancy.CreateRequest {
	i := n.seq.Add(1)
	return vacancy.CreateRequest{
		Title:       fmt.Sprintf("%s-%d", n.prefix, i),
		Description: fmt.Sprintf("Synthetic vacancy %d", i),
		Division:    divisionFor(i),
		Country:     countryFor(i),
	}
}

// NextUpdate draws an update payload reusing the same sequence space so the
// new title stays unique.
func (n *Namer) NextUpdate() vacancy.UpdateRequest {
	i := n.seq.Add(1)
	return vacancy.UpdateRequest{
		Title:       fmt.Sprintf("%s-%d", n.prefix, i),
		Description: fmt.Sprintf("Synthetic vacancy %d (updated)", i),
		Division:    divisionFor(i),
		Country:     countryFor(i),
		Views:       int(i % 100),
	}
}

var divisions = []vacancy.Division{
	vacancy.DivisionDevelopment,
	vacancy.DivisionSecurity,
	vacancy.DivisionSales,
	vacancy.DivisionOther,
}

var countries = []string{"US", "DE", "JP", "BR", "IN"}

func divisionFor(i int64) vacancy.Division {
	return divisions[int(i)%len(divisions)]
}

func countryFor(i int64) string {
	return countries[int(i)%len(countries)]
}

// CRUDBehavior exercises the full vacancy lifecycle: create, update, fetch,
// then delete. The delete runs even when an intermediate step fails, so the
// store does not accumulate synthetic records.
type CRUDBehavior struct {
	namer *Namer
}

// NewCRUDBehavior creates a CRUDBehavior drawing payloads from namer.
func NewCRUDBehavior(namer *Namer) *CRUDBehavior {
	return &CRUDBehavior{namer: namer}
}

func (b *CRUDBehavior) Name() string { return "crud" }

func (b *CRUDBehavior) Run(ctx context.Context, client *vacancy.Client) (err error) {
	created, err := client.Create(ctx, b.namer.NextCreate())
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer func() {
		if _, delErr := client.Delete(ctx, created.ID); delErr != nil && err == nil {
			err = fmt.Errorf("delete: %w", delErr)
		}
	}()

	updated, err := client.Update(ctx, created.ID, b.namer.NextUpdate())
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if _, err := client.Get(ctx, updated.ID); err != nil {
		return fmt.Errorf("get: %w", err)
	}
	return nil
}

// ObserverBehavior lists one page of vacancies and drains the stream, the
// read-mostly counterpart to CRUDBehavior.
type ObserverBehavior struct {
	page  int
	limit int
}

// NewObserverBehavior creates an ObserverBehavior reading the given page.
func NewObserverBehavior(page, limit int) *ObserverBehavior {
	return &ObserverBehavior{page: page, limit: limit}
}

func (b *ObserverBehavior) Name() string { return "observer" }

func (b *ObserverBehavior) Run(ctx context.Context, client *vacancy.Client) error {
	stream, err := client.List(ctx, b.page, b.limit)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if _, err := stream.Collect(); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
