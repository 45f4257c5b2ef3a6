// Package thermo prints periodic status lines for a stepped simulation.
//
// A [Thermo] is configured with a list of keywords. Each keyword becomes a
// column whose value is read from the host [Snapshot] or from a compute,
// fix or variable [Provider] resolved through the [Environment]:
//
//   - plain keywords such as step, temp, pe, press or vol
//   - c_ID, f_ID and v_NAME for provider scalars
//   - c_ID[i] and c_ID[i][j] for vector and array elements
//   - c_ID[*], c_ID[2*] and friends expand to one column per element; on
//     an array they select columns and expand every row as c_ID[i][k]
//
// A run is bracketed by [Thermo.Setup], which writes the header and returns
// the initial [Session], and [Thermo.Footer]. In between, [Thermo.Report]
// checks the atom count, evaluates every column and writes one row.
//
// # Line styles
//
//	one   - a single line per report under a header
//	multi - a banner with three name = value pairs per line
//	yaml  - a YAML document with a keywords list and data rows
package thermo
