/*
Package velada is a multi-step event creation wizard engine. It drives the
sectioned create and edit flows of an events platform: section registry,
gated navigation, per-section validation, draft persistence, and the ordered
submission pipeline against the events REST backend.

It follows a hexagonal layout: the wizard core is decoupled from its
adapters (draft stores, the backend client, HTTP and CLI transports), so
the same engine serves an API daemon, a terminal wizard, or an embedding
application.

# Concept

A flow walks an ordered list of sections. Each section's form values live
in a draft that is persisted on every save, so an interrupted flow resumes
where it left off. Advancing requires the section to validate; jumping
ahead requires the target section to have been completed before. At the
end, the drafts are composed into backend payloads and submitted as a
fixed sequence of calls, the main event last.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/veladahq/velada"
		"github.com/veladahq/velada/pkg/adapters/backendapi"
		"github.com/veladahq/velada/pkg/domain"
	)

	func main() {
		backend := backendapi.New("https://api.example.com")
		wizard, err := velada.New(backend)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		state, err := wizard.StartCreate(ctx)
		if err != nil {
			log.Fatal(err)
		}

		draft := domain.SectionDraft{"name": "Concierto de jazz"}
		if err := wizard.SaveSection(ctx, state.FlowID, domain.SectionEvento, draft); err != nil {
			log.Fatal(err)
		}

		next, errs, err := wizard.Advance(ctx, state.FlowID, domain.SectionEvento)
		if err != nil {
			log.Fatal(err)
		}
		if !errs.Valid() {
			log.Println("fix these fields:", errs.Fields())
			return
		}
		log.Println("next section:", next.ID)
	}
*/
package velada
