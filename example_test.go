package velada_test

import (
	"context"
	"fmt"
	"log"

	"github.com/veladahq/velada"
	"github.com/veladahq/velada/pkg/domain"
)

// Example walks a create flow up to its first gated transition.
func Example() {
	wizard, err := velada.New(&recordingBackend{})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := wizard.StartCreate(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// Advancing an empty section is blocked with field errors.
	_, errs, err := wizard.Advance(ctx, state.FlowID, domain.SectionEvento)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("blocked on:", errs.Fields())

	progress, err := wizard.Progress(state.FlowID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("section %d of %d\n", progress.Current, progress.Total)

	// Output:
	// blocked on: [description eventType image name]
	// section 1 of 3
}
