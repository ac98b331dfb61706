package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veladahq/velada/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	out := GenerateMermaid(domain.Sections(domain.FlowCreate), nil)

	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, `evento[/"Evento"/]`)
	assert.Contains(t, out, "evento --> tipoEvento")
	assert.Contains(t, out, "tipoEvento --> ubicacion")
	assert.Contains(t, out, "ubicacion --> submit")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := GenerateMermaid(domain.Sections(domain.FlowCreate), &Overlay{
		Completed: domain.CompletionMap{domain.SectionEvento: true},
		Current:   domain.SectionTipoEvento,
	})

	assert.Contains(t, out, "class evento completed;")
	assert.Contains(t, out, "class tipoEvento current;")
	assert.NotContains(t, out, "class ubicacion completed;")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out := GenerateMermaid(nil, nil)
	assert.Equal(t, "graph LR\n", out)
}
