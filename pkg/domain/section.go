package domain

// FlowKind distinguishes the create and edit wizard flows.
// Each kind has its own section list and its own draft storage keys.
type FlowKind string

const (
	FlowCreate FlowKind = "create"
	FlowEdit   FlowKind = "edit"
)

// Section represents one step of the wizard.
// Sections are static, defined at load time, and identified by ID.
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Section IDs. The edit flow uses distinct IDs so both flows can coexist
// in the same store without clashing.
const (
	SectionEvento     = "evento"
	SectionTipoEvento = "tipoEvento"
	SectionUbicacion  = "ubicacion"

	SectionEditarEvento     = "editarEvento"
	SectionEditarTipoEvento = "editarTipoEvento"
	SectionEditarUbicacion  = "editarUbicacion"
)

var createSections = []Section{
	{ID: SectionEvento, Name: "Evento", Path: "/dashboard/events/create-event/evento"},
	{ID: SectionTipoEvento, Name: "Tipo Evento", Path: "/dashboard/events/create-event/tipoEvento"},
	{ID: SectionUbicacion, Name: "Ubicación", Path: "/dashboard/events/create-event/ubicacion"},
}

var editSections = []Section{
	{ID: SectionEditarEvento, Name: "Detalles", Path: "/dashboard/events/edit-event/editarEvento"},
	{ID: SectionEditarTipoEvento, Name: "Logistica", Path: "/dashboard/events/edit-event/editarTipoEvento"},
	{ID: SectionEditarUbicacion, Name: "Ubicación", Path: "/dashboard/events/edit-event/editarUbicacion"},
}

// Progress describes how far through the section list a flow is.
// A zero Progress is what an inert (unknown-section) controller reports.
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Sections returns the ordered section list for a flow kind.
// The returned slice is a copy; callers may not mutate the registry.
// An unknown kind yields an empty list so downstream navigation degrades
// to an inert state instead of crashing.
func Sections(kind FlowKind) []Section {
	var src []Section
	switch kind {
	case FlowCreate:
		src = createSections
	case FlowEdit:
		src = editSections
	default:
		return nil
	}
	out := make([]Section, len(src))
	copy(out, src)
	return out
}
