// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package mapping resolves the raw indices stored in a visibility table
// (antenna, field, data description, frequency group, subband, polarization
// setup) to names and frequencies.
//
// Reducers only depend on the Mapping interface. Static is the file-backed
// implementation used by the CLI and the HTTP service; its JSON layout is
// documented on Metadata.
package mapping

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// ErrUnknown is returned for an index that has no entry in the mapping.
var ErrUnknown = errors.New("unknown index")

// DDEntry is what a data-description id stands for.
type DDEntry struct {
	FreqGroup int `json:"freq_group"`
	Subband   int `json:"subband"`
	PolID     int `json:"pol_id"`
}

// Mapping is the set of lookups a reduction needs.
type Mapping interface {
	BaselineName(a1, a2 int) string
	FreqGroupName(fq int) string
	FieldName(field int) string

	// Frequencies returns the channel frequencies of a subband in Hz.
	Frequencies(fq, sb int) ([]float64, error)

	DataDescriptionID(fq, sb, polID int) (int, error)
	DataDescriptionIDs() []int
	UnmapDDID(ddid int) (DDEntry, error)
	Polarizations(polID int) ([]string, error)

	// IntegrationTime is the shortest sampling interval in seconds.
	IntegrationTime() float64

	// TimeRange is the span of the table's timestamps.
	TimeRange() (start, end float64)
}

// FreqGroup is one frequency group and its subbands.
type FreqGroup struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Subbands []Subband `json:"subbands"`
}

// Subband lists channel frequencies in Hz.
type Subband struct {
	Frequencies []float64 `json:"frequencies"`
}

// PolSetup is one polarization setup.
type PolSetup struct {
	ID       int      `json:"id"`
	Products []string `json:"products"`
}

// DataDescription ties a ddid to its frequency group, subband and
// polarization setup.
type DataDescription struct {
	ID int `json:"id"`
	DDEntry
}

// Metadata is the on-disk form of a Static mapping.
type Metadata struct {
	Antennas         []string          `json:"antennas"`
	Fields           []string          `json:"fields"`
	FreqGroups       []FreqGroup       `json:"freq_groups"`
	Polarizations    []PolSetup        `json:"polarizations"`
	DataDescriptions []DataDescription `json:"data_descriptions"`
	IntegrationTime  float64           `json:"integration_time"`
	TimeRange        [2]float64        `json:"time_range"`
}

// Static is a Mapping backed by Metadata.
type Static struct {
	meta   Metadata
	groups map[int]FreqGroup
	pols   map[int][]string
	dd     map[int]DDEntry
	ddRev  map[DDEntry]int
	ddids  []int
}

// New indexes md and checks that every data description refers to a known
// frequency group, subband and polarization setup.
func New(md Metadata) (*Static, error) {
	s := &Static{
		meta:   md,
		groups: make(map[int]FreqGroup, len(md.FreqGroups)),
		pols:   make(map[int][]string, len(md.Polarizations)),
		dd:     make(map[int]DDEntry, len(md.DataDescriptions)),
		ddRev:  make(map[DDEntry]int, len(md.DataDescriptions)),
	}
	for _, g := range md.FreqGroups {
		s.groups[g.ID] = g
	}
	for _, p := range md.Polarizations {
		s.pols[p.ID] = p.Products
	}
	for _, d := range md.DataDescriptions {
		if _, dup := s.dd[d.ID]; dup {
			return nil, fmt.Errorf("duplicate data description id %d", d.ID)
		}
		g, ok := s.groups[d.FreqGroup]
		if !ok || d.Subband < 0 || d.Subband >= len(g.Subbands) {
			return nil, fmt.Errorf("data description %d: %w frequency group %d subband %d",
				d.ID, ErrUnknown, d.FreqGroup, d.Subband)
		}
		if _, ok := s.pols[d.PolID]; !ok {
			return nil, fmt.Errorf("data description %d: %w polarization setup %d", d.ID, ErrUnknown, d.PolID)
		}
		s.dd[d.ID] = d.DDEntry
		s.ddRev[d.DDEntry] = d.ID
		s.ddids = append(s.ddids, d.ID)
	}
	return s, nil
}

// Load reads a Metadata JSON file.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read mapping metadata: %w", err)
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode mapping metadata %s: %w", path, err)
	}
	return New(md)
}

// Save writes md as indented JSON.
func Save(path string, md Metadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mapping metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write mapping metadata: %w", err)
	}
	return nil
}

// Metadata returns the metadata the mapping was built from.
func (s *Static) Metadata() Metadata { return s.meta }

// BaselineName implements Mapping.
func (s *Static) BaselineName(a1, a2 int) string {
	return s.antenna(a1) + s.antenna(a2)
}

func (s *Static) antenna(a int) string {
	if a >= 0 && a < len(s.meta.Antennas) {
		return s.meta.Antennas[a]
	}
	return fmt.Sprintf("ANT%d", a)
}

// FreqGroupName implements Mapping.
func (s *Static) FreqGroupName(fq int) string {
	if g, ok := s.groups[fq]; ok && g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("FQ%d", fq)
}

// FieldName implements Mapping.
func (s *Static) FieldName(field int) string {
	if field >= 0 && field < len(s.meta.Fields) {
		return s.meta.Fields[field]
	}
	return fmt.Sprintf("FIELD%d", field)
}

// Frequencies implements Mapping.
func (s *Static) Frequencies(fq, sb int) ([]float64, error) {
	g, ok := s.groups[fq]
	if !ok || sb < 0 || sb >= len(g.Subbands) {
		return nil, fmt.Errorf("%w: frequency group %d subband %d", ErrUnknown, fq, sb)
	}
	return g.Subbands[sb].Frequencies, nil
}

// DataDescriptionID implements Mapping.
func (s *Static) DataDescriptionID(fq, sb, polID int) (int, error) {
	id, ok := s.ddRev[DDEntry{FreqGroup: fq, Subband: sb, PolID: polID}]
	if !ok {
		return 0, fmt.Errorf("%w: no data description for fq=%d sb=%d pol=%d", ErrUnknown, fq, sb, polID)
	}
	return id, nil
}

// DataDescriptionIDs implements Mapping.
func (s *Static) DataDescriptionIDs() []int {
	return append([]int(nil), s.ddids...)
}

// UnmapDDID implements Mapping.
func (s *Static) UnmapDDID(ddid int) (DDEntry, error) {
	e, ok := s.dd[ddid]
	if !ok {
		return DDEntry{}, fmt.Errorf("%w: data description %d", ErrUnknown, ddid)
	}
	return e, nil
}

// Polarizations implements Mapping.
func (s *Static) Polarizations(polID int) ([]string, error) {
	p, ok := s.pols[polID]
	if !ok {
		return nil, fmt.Errorf("%w: polarization setup %d", ErrUnknown, polID)
	}
	return p, nil
}

// IntegrationTime implements Mapping.
func (s *Static) IntegrationTime() float64 { return s.meta.IntegrationTime }

// TimeRange implements Mapping.
func (s *Static) TimeRange() (start, end float64) {
	return s.meta.TimeRange[0], s.meta.TimeRange[1]
}
