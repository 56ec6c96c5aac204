// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

/*
Package reducer turns a chunked visibility table into labeled (x, y, mask)
datasets.

A run is driven by Run. It opens the table through a source.Opener, builds a
plan from the selection and the mapping, and feeds every chunk to the
row-block reducer of the requested plot kind:

	chunk -> mask -> channel average -> quantity -> time bin -> weight filter -> accumulate

Every stage is a strategy chosen once per run. The mask comes from
mask.Engine, the channel stage is one of perChannel, scalarChannels or
vectorChannels, time binning is an average.TimeBinner, and weight filtering
is a rejectFn that is either acceptAll or backed by a weight.Filter.

Plot Kinds:

  - <q>time: quantity vs time, one series per channel or per averaged band
  - <q>chan: quantity vs channel, one series per (binned) time
  - <q>freq: quantity vs frequency in MHz
  - wt: weight vs time
  - uv: uv coverage including the conjugate points
  - ampuv: amplitude vs uv distance in wavelengths

where <q> is amp, pha, anp, re, im or rni (anp and rni plot two quantities;
the freq kinds exist for amp, pha and anp).

Memory:

A run holds one chunk of rows times channels times polarizations plus the
accumulator. The accumulator grows with the number of distinct keys
(baselines x frequency groups x subbands x fields x polarizations x channel
or time buckets), which dominates memory for large selections; the number
of rows does not.

Errors:

All failures are fatal to the run and no partial result is returned. Use
errors.Is with ErrConfiguration, ErrConsistency and ErrUnsupportedColumn to
classify them.
*/
package reducer
