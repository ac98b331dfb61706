package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/veladahq/velada"
	"github.com/veladahq/velada/internal/config"
	"github.com/veladahq/velada/internal/presentation/tui"
	"github.com/veladahq/velada/pkg/domain"
)

// RunOptions contains the configuration for the 'run' command.
type RunOptions struct {
	ConfigPath string
	EventID    int // non-zero starts an edit flow
	Debug      bool
}

// Execute handles the 'run' command: an interactive terminal walk of the
// wizard, one section at a time.
func Execute(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := NewLogger(cfg.Log, opts.Debug)

	wizard, closeStore, err := NewWizard(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	tui.PrintBanner()
	return runWizard(sigCtx, wizard, opts, bufio.NewReader(os.Stdin), os.Stdout)
}

// field describes one prompt of a section form.
type field struct {
	key      string
	label    string
	required bool
}

var sectionFields = map[string][]field{
	domain.SectionEvento: {
		{key: "name", label: "Nombre del evento", required: true},
		{key: "description", label: "Descripción", required: true},
		{key: "eventType", label: "Categoría (id)", required: true},
		{key: "image", label: "Imagen (ruta de archivo)", required: true},
	},
	domain.SectionTipoEvento: {
		{key: "tipo_mode", label: "Modalidad (presencial/virtual/hibrido)", required: true},
		{key: "tipo_startDate", label: "Fecha de inicio (YYYY-MM-DD)", required: true},
		{key: "tipo_startTime", label: "Hora de inicio (HH:MM)", required: true},
		{key: "tipo_endDate", label: "Fecha de finalización (YYYY-MM-DD)", required: true},
		{key: "tipo_endTime", label: "Hora de finalización (HH:MM)", required: true},
		{key: "tipo_maxParticipants", label: "Máximo de participantes", required: true},
		{key: "tipo_price", label: "Precio", required: true},
		{key: "tipo_videoLink", label: "Enlace de videoconferencia", required: false},
	},
	domain.SectionUbicacion: {
		{key: "ubicacion_name", label: "Nombre del lugar", required: true},
		{key: "ubicacion_address", label: "Dirección", required: true},
		{key: "ubicacion_description", label: "Descripción del lugar", required: true},
		{key: "ubicacion_price", label: "Precio del lugar", required: true},
	},
}

// Edit sections share their forms with the create sections.
func fieldsFor(sectionID string) []field {
	switch sectionID {
	case domain.SectionEditarEvento:
		return sectionFields[domain.SectionEvento]
	case domain.SectionEditarTipoEvento:
		return sectionFields[domain.SectionTipoEvento]
	case domain.SectionEditarUbicacion:
		return sectionFields[domain.SectionUbicacion]
	}
	return sectionFields[sectionID]
}

func runWizard(ctx context.Context, wizard *velada.Wizard, opts RunOptions, in *bufio.Reader, out io.Writer) error {
	renderer := tui.NewRenderer(out)

	var (
		state *domain.FlowState
		err   error
	)
	if opts.EventID != 0 {
		state, err = wizard.StartEdit(ctx, opts.EventID)
	} else {
		state, err = wizard.StartCreate(ctx)
	}
	if err != nil {
		return err
	}

	if categories, err := wizard.Categories(ctx); err == nil {
		renderer.Info("Categorías disponibles:")
		for _, c := range categories {
			renderer.Info(fmt.Sprintf("  %d - %s", c.ID, c.Name))
		}
	}

	sections, err := wizard.Sections(state.FlowID)
	if err != nil {
		return err
	}

	current := state.CurrentSectionID
	for {
		if ctx.Err() != nil {
			renderer.Info("Interrumpido; el borrador queda guardado.")
			return ctx.Err()
		}

		section, ok := sectionByID(sections, current)
		if !ok {
			return fmt.Errorf("unknown section %q", current)
		}

		progress, err := wizard.Progress(state.FlowID)
		if err != nil {
			return err
		}
		renderer.SectionHeader(section, progress)

		draft, eof, err := promptSection(ctx, wizard, state.FlowID, section.ID, in, out, renderer)
		if err != nil {
			return err
		}
		if err := wizard.SaveSection(ctx, state.FlowID, section.ID, draft); err != nil {
			return err
		}

		next, errs, err := wizard.Advance(ctx, state.FlowID, section.ID)
		if err != nil {
			return err
		}
		if !errs.Valid() {
			renderer.Errors(errs)
			if eof {
				return fmt.Errorf("entrada terminada con campos inválidos")
			}
			continue
		}
		if next != nil {
			current = next.ID
			continue
		}

		// Past the last section: submit.
		return submitFlow(ctx, wizard, state.FlowID, renderer)
	}
}

func submitFlow(ctx context.Context, wizard *velada.Wizard, flowID string, renderer *tui.Renderer) error {
	result, errs, err := wizard.Submit(ctx, flowID)
	if err != nil {
		renderer.Failure(err)
		return err
	}
	if !errs.Valid() {
		renderer.Errors(errs)
		return fmt.Errorf("el evento tiene campos inválidos")
	}
	renderer.Success(result)
	return nil
}

// promptSection collects the section's field values, starting from the
// already-saved draft so resumed flows show their previous answers.
func promptSection(ctx context.Context, wizard *velada.Wizard, flowID, sectionID string, in *bufio.Reader, out io.Writer, renderer *tui.Renderer) (domain.SectionDraft, bool, error) {
	set, err := wizard.Drafts(ctx, flowID)
	if err != nil {
		return nil, false, err
	}
	draft := draftFor(set, sectionID)

	for _, f := range fieldsFor(sectionID) {
		if existing, ok := draft[f.key]; ok && existing != nil && fmt.Sprint(existing) != "" {
			renderer.Info(fmt.Sprintf("%s: %v (enter para mantener)", f.label, existing))
		}

		renderer.Prompt(f.label, f.required)
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, false, err
		}
		value := strings.TrimSpace(line)
		if value == "" {
			if errors.Is(err, io.EOF) {
				return draft, true, nil
			}
			continue
		}

		if f.key == "image" {
			uri, name, err := imageAsDataURI(value)
			if err != nil {
				fmt.Fprintf(out, "  %v\n", err)
				continue
			}
			draft["image"] = uri
			draft["imageFileName"] = name
			continue
		}
		draft[f.key] = value
	}
	return draft, false, nil
}

// draftFor re-encodes the typed draft of a section so the prompt loop can
// patch individual keys.
func draftFor(set domain.DraftSet, sectionID string) domain.SectionDraft {
	var src any
	switch sectionID {
	case domain.SectionEvento, domain.SectionEditarEvento:
		src = set.Event
	case domain.SectionTipoEvento, domain.SectionEditarTipoEvento:
		src = set.Logistics
	case domain.SectionUbicacion, domain.SectionEditarUbicacion:
		src = set.Location
	default:
		return domain.SectionDraft{}
	}
	draft, err := domain.EncodeDraft(src)
	if err != nil {
		return domain.SectionDraft{}
	}
	return draft
}

// imageAsDataURI loads a local image file into the data URI form the
// drafts carry.
func imageAsDataURI(path string) (uri, name string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("no se pudo leer la imagen: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	uri = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	return uri, filepath.Base(path), nil
}

func sectionByID(sections []domain.Section, id string) (domain.Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Section{}, false
}
