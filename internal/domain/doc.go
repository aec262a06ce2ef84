// Package domain contains the core domain entities and value objects for focusship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, database, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [LandmarkFrame]: One facial-landmark observation from the inference feed
//   - [Sample]: A scored attention sample derived from a frame
//   - [Batch]: An aggregate of samples ready to be sent together
//   - [Session]: One tracked interval with aggregate statistics
//   - [Alert]: A recorded low-attention alert trigger
//   - [State]: Persistent agent state for crash recovery
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
