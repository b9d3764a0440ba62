// Package accession assigns and checks project accessions.
//
// A project accession is the four or six letter prefix, the two digit
// assembly version and a zero padded ordinal, e.g. AAAA01000001. The ordinal
// width depends on the number of entries in the submission (see Width).
// Ordinals come from an insertion ordered Order: the first record with a
// given entry key wins its ordinal for the rest of the run.
package accession
