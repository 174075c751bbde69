// Package dataset finds, groups, loads and saves the numeric arrays being labeled.
//
// Discovery walks directories recursively with doublestar and keeps files whose names end in one
// of the configured extensions (".npy" by default, case-insensitive). [GroupFiles] then buckets
// sibling files by a fixed-length prefix or suffix of their name.
//
// [Load] reads a single NPY array (optionally gzip, bzip2 or xz compressed) and reduces it to one
// float64 series. [Save] writes labeled output in either of two layouts:
//
//   - merged: one directory per group holding data.npy (rows x files), data_label.npy and
//     data_timestamp.npy
//   - separate: one directory per source file holding the same three artifacts
//
// Leading samples can be dropped at save time with SkipPoints; annotation indices are shifted by
// the same amount so labels stay aligned with the retained data.
package dataset
