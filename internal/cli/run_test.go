package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veladahq/velada"
	"github.com/veladahq/velada/pkg/adapters/memory"
	"github.com/veladahq/velada/pkg/domain"
)

type scriptedBackend struct {
	calls []string
}

func (b *scriptedBackend) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 3, Name: "Concierto"}}, nil
}

func (b *scriptedBackend) GetEvent(context.Context, int) (map[string]any, error) {
	return nil, os.ErrNotExist
}

func (b *scriptedBackend) CreateTypeOfEvent(context.Context, domain.TypeOfEventPayload) (int, error) {
	b.calls = append(b.calls, "createType")
	return 11, nil
}

func (b *scriptedBackend) CreateLocation(context.Context, domain.LocationPayload) (int, error) {
	b.calls = append(b.calls, "createLocation")
	return 22, nil
}

func (b *scriptedBackend) CreateEvent(context.Context, domain.EventPayload, int, int) (int, error) {
	b.calls = append(b.calls, "createEvent")
	return 33, nil
}

func (b *scriptedBackend) UpdateTypeOfEvent(context.Context, int, domain.TypeOfEventPayload) error {
	return nil
}
func (b *scriptedBackend) UpdateLocation(context.Context, int, domain.LocationPayload) error {
	return nil
}
func (b *scriptedBackend) UpdateEvent(context.Context, int, domain.EventPayload, int, int) error {
	return nil
}

func TestRunWizard_CreateFlowScripted(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "poster.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("png-bytes"), 0o644))

	backend := &scriptedBackend{}
	wizard, err := velada.New(backend, velada.WithDraftStore(memory.NewStore()))
	require.NoError(t, err)

	input := strings.Join([]string{
		// evento
		"Concierto de jazz",
		"Una noche de jazz",
		"3",
		imagePath,
		// tipoEvento
		"presencial",
		"2025-01-10",
		"14:00",
		"2025-01-10",
		"18:00",
		"150",
		"25",
		"", // no video link for presencial
		// ubicacion
		"Teatro Colón",
		"Calle 10 # 5-32",
		"Sala principal",
		"0",
	}, "\n") + "\n"

	var out bytes.Buffer
	err = runWizard(context.Background(), wizard, RunOptions{},
		bufio.NewReader(strings.NewReader(input)), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"createType", "createLocation", "createEvent"}, backend.calls)
	assert.Contains(t, out.String(), "Evento creado (id 33)")
}

func TestRunWizard_StopsWhenInputEndsInvalid(t *testing.T) {
	backend := &scriptedBackend{}
	wizard, err := velada.New(backend, velada.WithDraftStore(memory.NewStore()))
	require.NoError(t, err)

	// Only the name is provided; input then runs dry.
	var out bytes.Buffer
	err = runWizard(context.Background(), wizard, RunOptions{},
		bufio.NewReader(strings.NewReader("Concierto de jazz\n")), &out)
	require.Error(t, err)

	assert.Empty(t, backend.calls)
	assert.Contains(t, out.String(), "La descripción es obligatoria")
}
