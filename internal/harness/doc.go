// Package harness runs multi-device sync scenarios against the real
// response store, merge engine and snapshot transport.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	devices:
//	  - name: tablet-a
//	    sector: Pabellón A
//	  - name: tablet-b
//	steps:
//	  - device: tablet-a
//	    submit: { firstName: Ana, lastName: Gómez, email: ana@example.com, nps: 9 }
//	  - device: tablet-a
//	    export: snap-a
//	  - device: tablet-b
//	    import: snap-a
//	    expect: { added: 1, duplicates: 0 }
//	assertions:
//	  - type: count
//	    device: tablet-b
//	    count: 1
//
// A step performs exactly one operation: submit, export (stores the
// snapshot under a name), import (merges a named snapshot), import_raw
// (merges literal bytes) or clear.
//
// # Assertion Types
//
//   - count: number of records on a device
//   - pending: number of records not yet exported on a device
//   - order: exact id sequence on a device
//   - same_set: listed devices hold the same id set
//
// # Deterministic Testing
//
// Every device runs on its own in-memory backend with a fixed device id
// ("dev-" + name), sequential response ids (name + "-r" + n) and a step
// clock starting at 2025-05-01T10:00:00Z. Identical scenarios therefore
// produce identical traces, which RunWithGolden compares against
// testdata/golden.
package harness
