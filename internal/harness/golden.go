package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/storesync/internal/canon"
)

// Dump is the golden form of a run: the step outcomes and the committed
// cache graph named by scope keys. Payloads are left out so dumps survive
// changes to record fields; their fingerprint covers them.
type Dump struct {
	Scenario    string      `json:"scenario"`
	Steps       []StepTrace `json:"steps"`
	Objects     []string    `json:"objects"`
	Links       []string    `json:"links"`
	Fingerprint string      `json:"-"`
}

// NewDump builds the dump of a scenario result.
func NewDump(name string, r *Result) (*Dump, error) {
	d := &Dump{Scenario: name, Steps: r.Steps, Objects: []string{}, Links: []string{}}
	if r.Snapshot == nil {
		return d, nil
	}
	for _, o := range r.Snapshot.Objects {
		ref := fmt.Sprintf("%s:%d:%s", o.Kind, o.SiteID, o.Key)
		if o.Parent != "" {
			ref += " < " + o.Parent
		}
		d.Objects = append(d.Objects, ref)
	}
	for _, l := range r.Snapshot.Links {
		d.Links = append(d.Links, fmt.Sprintf("%s %s %s", l.Relation, l.Owner, l.Member))
	}
	_, sum, err := canon.Fingerprint(canon.DomainDump, r.Snapshot)
	if err != nil {
		return nil, err
	}
	d.Fingerprint = sum
	return d, nil
}

// Marshal returns the canonical JSON form of d.
func (d *Dump) Marshal() ([]byte, error) {
	return canon.Marshal(d)
}

// AssertGolden compares the dump of r against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, r *Result) {
	t.Helper()

	d, err := NewDump(name, r)
	if err != nil {
		t.Fatalf("dump %s: %v", name, err)
	}
	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("marshal dump %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
