// Package nacha renders a file of PPD batches into the fixed width NACHA
// record layout: 94 character records, padded with filler to whole blocks.
package nacha
