/*
Package domain contains the core domain models for the Velada wizard engine.

It defines the fundamental entities of the multi-step event wizard: Sections,
per-section Drafts, the CompletionMap that gates navigation, and the composed
payloads handed to the events backend. This package is kept pure and free of
I/O or persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Section: One step of the wizard (event details, logistics, location).
  - SectionDraft: The in-progress, unsubmitted field values for one section.
  - CompletionMap: Per-section record of whether validation has ever passed.
  - ComposedEvent: The backend-shaped payloads assembled at submission time.
*/
package domain
