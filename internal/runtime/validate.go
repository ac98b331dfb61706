package runtime

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/veladahq/velada/pkg/domain"
)

// Validation limits. Participant and price ceilings mirror what the events
// backend enforces; client-side validation exists so the user hears about it
// before the submit pipeline does.
const (
	maxParticipantsLimit = 100000
	maxPriceLimit        = 999999999
)

var videoLinkPattern = regexp.MustCompile(`(?i)^https?://`)

// virtualModes are the modalities that require a video conference link.
var virtualModes = map[string]bool{
	"virtual": true,
	"hibrido": true,
}

// allowed raster formats for the event image, by extension and MIME type.
var (
	allowedImageExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	allowedImageMIMEs = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true}
)

// ValidateSection dispatches to the validator for a section ID. Unknown
// sections yield an empty map: there is nothing to block on.
func ValidateSection(sectionID string, set domain.DraftSet, editing bool) domain.ErrorMap {
	switch sectionID {
	case domain.SectionEvento, domain.SectionEditarEvento:
		return ValidateEventDetails(set.Event, editing)
	case domain.SectionTipoEvento, domain.SectionEditarTipoEvento:
		return ValidateLogistics(set.Logistics)
	case domain.SectionUbicacion, domain.SectionEditarUbicacion:
		return ValidateLocation(set.Location)
	}
	return domain.ErrorMap{}
}

// ValidateEventDetails checks the first section: name, image, and the
// description/category pair that rides along to the logistics payload.
// When editing, a record with an existing remote image does not need the
// image re-attached.
func ValidateEventDetails(d domain.EventDetailsDraft, editing bool) domain.ErrorMap {
	errs := domain.ErrorMap{}

	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "El nombre del evento es obligatorio"
	}

	hasRemoteImage := editing && strings.HasPrefix(d.ImagePreview, "http")
	if d.Image == "" && !hasRemoteImage {
		errs["image"] = "La imagen del evento es obligatoria"
	} else if d.ImageFileName != "" {
		ext := strings.ToLower(filepath.Ext(d.ImageFileName))
		if !allowedImageExts[ext] {
			errs["image"] = "Solo se permiten imágenes en formato JPG o PNG"
		}
	} else if mime, ok := dataURIMIME(d.Image); ok && !allowedImageMIMEs[mime] {
		errs["image"] = "Solo se permiten imágenes en formato JPG o PNG"
	}

	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = "La descripción es obligatoria"
	}
	if d.EventType == "" {
		errs["eventType"] = "El tipo de evento es obligatorio"
	}

	return errs
}

// ValidateLogistics checks the type-of-event section: required fields,
// the conditional video link, the combined date ordering, and the numeric
// domain ranges.
func ValidateLogistics(d domain.LogisticsDraft) domain.ErrorMap {
	errs := domain.ErrorMap{}

	if strings.TrimSpace(d.Category) == "" {
		errs["event_type"] = "El tipo de evento es obligatorio"
	}
	if d.Mode == "" {
		errs["mode"] = "La modalidad es obligatoria"
	}
	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = "La descripción es obligatoria"
	}

	if d.StartDate == "" {
		errs["start_date"] = "La fecha de inicio es requerida"
	}
	if d.StartTime == "" {
		errs["start_time"] = "La hora de inicio es requerida"
	}
	if d.EndDate == "" {
		errs["end_date"] = "La fecha de finalización es requerida"
	}
	if d.EndTime == "" {
		errs["end_time"] = "La hora de finalización es requerida"
	}

	if virtualModes[d.Mode] {
		if strings.TrimSpace(d.VideoLink) == "" {
			errs["video_Conference_Link"] = "El enlace de videoconferencia es obligatorio"
		} else if !videoLinkPattern.MatchString(d.VideoLink) {
			errs["video_Conference_Link"] = "El enlace debe comenzar con http:// o https://"
		}
	}

	// Ordering is only checkable once all four sub-fields parse.
	start, okStart := combineDateTime(d.StartDate, d.StartTime)
	end, okEnd := combineDateTime(d.EndDate, d.EndTime)
	if okStart && okEnd && !start.Before(end) {
		errs["end_time"] = "La fecha y hora de fin debe ser posterior a la de inicio"
	}

	if d.Price == nil {
		errs["price"] = "El precio es obligatorio"
	} else if *d.Price < 0 {
		errs["price"] = "El precio no puede ser negativo"
	} else if *d.Price > maxPriceLimit {
		errs["price"] = "El precio no puede exceder $999,000,000"
	}

	if d.MaxParticipants == nil {
		errs["max_Participants"] = "El máximo de participantes es obligatorio"
	} else if *d.MaxParticipants < 1 {
		errs["max_Participants"] = "Debe haber al menos 1 participante"
	} else if *d.MaxParticipants > maxParticipantsLimit {
		errs["max_Participants"] = "El máximo de participantes no puede exceder 100.000"
	}

	return errs
}

// ValidateLocation checks the venue section.
func ValidateLocation(d domain.LocationDraft) domain.ErrorMap {
	errs := domain.ErrorMap{}

	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "El nombre del lugar es obligatorio"
	}
	if strings.TrimSpace(d.Address) == "" {
		errs["address"] = "La dirección es obligatoria"
	}
	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = "La descripción es obligatoria"
	}
	if d.Price == nil {
		errs["price"] = "El precio es obligatorio"
	}

	return errs
}
