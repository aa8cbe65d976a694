package detection

import (
	"github.com/striemhq/striem/pkg/event"
	"github.com/striemhq/striem/pkg/rules"
)

// findingClassUID is the OCSF detection_finding class (2004).
const findingClassUID = 2004

// NewFinding builds the OCSF detection_finding event for a rule match
// against src. The finding's metadata.uid is always src.ID, so findings can
// be joined back to the event that produced them; metadata.correlation_uid
// is the source event's own OCSF metadata.uid when present, falling back to
// src.ID.
func NewFinding(src event.Event, rule rules.Descriptor) event.Event {
	correlationUID := src.ID
	if obj, ok := src.Data.(map[string]any); ok {
		if md, ok := obj["metadata"].(map[string]any); ok {
			if uid, ok := md["uid"].(string); ok && uid != "" {
				correlationUID = uid
			}
		}
	}

	data := map[string]any{
		"class_uid":   findingClassUID,
		"activity_id": 1,
		"severity":    rule.Level,
		"finding_info": map[string]any{
			"title":       rule.Title,
			"desc":        rule.Description,
			"uid":         rule.ID,
		},
		"metadata": map[string]any{
			"uid":             src.ID,
			"correlation_uid": correlationUID,
			"product": map[string]any{
				"vendor_name": "StrIEM",
				"product_name": "StrIEM",
			},
		},
	}

	metadata := make(map[string]any, len(src.Metadata)+2)
	for k, v := range src.Metadata {
		metadata[k] = v
	}
	metadata["ocsf"] = true
	metadata["striem"] = true

	finding := event.New(data, metadata)
	return finding
}
