// Package quality implements the validation and cleaning stage of the
// processing pipeline.
//
// Validation scores a raw batch without modifying it: required-field
// presence, numeric bounds, and composite-key duplicates are aggregated
// into ratio-based quality brackets, producing an immutable
// ValidationVerdict. The verdict is data, not an error; callers decide
// whether to proceed with degraded data.
//
// Cleaning runs independently of the validation outcome so partial data
// is preserved: it normalizes country codes and dates, derives computed
// fields, and drops records failing hard structural checks. Callers must
// still check the verdict's IsValid before writing a cleaned dataset to
// storage.
package quality
