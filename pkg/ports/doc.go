/*
Package ports defines the driven ports (interfaces) for the Velada engine.

These interfaces decouple the wizard core from external implementations,
allowing it to work with various draft storage backends, the events REST
backend, and distributed locking.

# Key Interfaces

  - DraftStore: Responsible for persisting and loading per-section drafts.
  - EventService: The REST backend collaborator (categories, events,
    types-of-event, locations).
  - DistributedLocker: Provides distributed locking for handling concurrent
    flow access across replicas.
*/
package ports
