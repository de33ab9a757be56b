// Package io reads and writes roster snapshots as YAML, JSON or TOML files.
//
// # Format
//
// All three encodings share one schema, the field names of [roster.Snapshot]:
//
//	categories:
//	  - name: Engineering
//	    color: "#2563eb"
//	  - name: Backend
//	    parent: Engineering
//	people:
//	  - id: ada
//	    name: Ada Lovelace
//	    flagged: true
//	    categories: [Backend]
//	    skill_ids: [go]
//	skills:
//	  - id: go
//	    name: Go
//	targets:
//	  - id: wh
//	    name: Warehouse
//	roles:
//	  - id: own
//	    name: Owner
//	assignments:
//	  - person_id: ada
//	    target_id: wh
//	    role_id: own
//	    hours: 6
//
// # Identifiers
//
// Hand-written files often omit ids. A missing person, skill, target or
// role id becomes a UUIDv5 of the record's name, so the same file always
// yields the same ids and references by id remain stable across edits of
// unrelated records.
//
// # Validation
//
// Reading never rejects dangling references: those render as "Unknown".
// Duplicate person ids and unnamed categories are rejected, since they make
// grouping ambiguous.
package io
