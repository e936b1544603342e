package realtime

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/nexocrm/nexo-go/internal/util"
	"github.com/nexocrm/nexo-go/notify"
)

// pushPayload is the wire shape of a new_notification frame.
type pushPayload struct {
	ID                     string `json:"id"`
	Title                  string `json:"title"`
	Message                string `json:"message"`
	Type                   string `json:"type"`
	Variant                string `json:"variant"`
	IsExternalNotification *bool  `json:"isExternalNotification"`
}

// externalMarkers is the fallback heuristic for origin classification when
// the server omits the explicit flag: wording associated with lead
// ingestion or integration sources. Brittle by nature; the explicit flag
// always wins when present.
var externalMarkers = []string{
	"nuevo lead",
	"lead externo",
	"facebook",
	"instagram",
	"formulario web",
	"fuente externa",
}

// normalizeEvent maps a new_notification frame into a notify.Event,
// synthesizing an id when the server omits one so dedup always has a key.
func normalizeEvent(f Frame) (notify.Event, error) {
	var p pushPayload
	if err := sonic.Unmarshal(f.Data, &p); err != nil {
		return notify.Event{}, err
	}

	id := p.ID
	if id == "" {
		id = util.TempID()
	}

	return notify.Event{
		ID:        id,
		Title:     p.Title,
		Message:   p.Message,
		Type:      p.Type,
		Severity:  notify.ResolveSeverity(p.Variant, p.Type),
		Origin:    classifyOrigin(p),
		CreatedAt: time.Now(),
	}, nil
}

func classifyOrigin(p pushPayload) notify.Origin {
	if p.IsExternalNotification != nil {
		if *p.IsExternalNotification {
			return notify.OriginExternal
		}
		return notify.OriginInternal
	}
	folded := util.FoldText(p.Title + " " + p.Message)
	for _, marker := range externalMarkers {
		if strings.Contains(folded, marker) {
			return notify.OriginExternal
		}
	}
	return notify.OriginInternal
}
