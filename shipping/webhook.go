package shipping

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrUnparseablePayload is returned when a webhook body yields no AWB under
// any known field name. Carriers do not keep a rigid payload shape, so the
// decoder is deliberately permissive before giving up.
var ErrUnparseablePayload = errors.New("webhook payload carries no recognizable AWB")

// WebhookPayload is the normalized content of a carrier status callback.
type WebhookPayload struct {
	AWB       string
	RawStatus string
	Location  string
	OrderRef  string
	Timestamp time.Time
}

var (
	awbKeys      = []string{"AWB", "awb", "awb_number", "waybill", "wbn"}
	statusKeys   = []string{"Status", "status", "current_status", "shipment_status"}
	locationKeys = []string{"StatusLocation", "Location", "location", "current_location"}
	timeKeys     = []string{"StatusDateTime", "timestamp", "status_date", "event_time"}
	refKeys      = []string{"ReferenceNo", "reference_no", "order_id", "orderId", "order", "ref_ids"}
)

func stringField(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func parseEventTime(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseWebhookPayload decodes a carrier callback defensively: the body may be
// a flat object or wrap everything in a Shipment envelope, the status may be
// a bare string or a nested object, and every field is tried under several
// known names.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	fields := root
	for _, key := range []string{"Shipment", "shipment"} {
		if wrapped, ok := root[key].(map[string]interface{}); ok {
			fields = wrapped
			break
		}
	}

	payload := &WebhookPayload{
		AWB:       stringField(fields, awbKeys),
		Location:  stringField(fields, locationKeys),
		OrderRef:  stringField(fields, refKeys),
		Timestamp: time.Now(),
	}

	if rawTime := stringField(fields, timeKeys); rawTime != "" {
		if t, ok := parseEventTime(rawTime); ok {
			payload.Timestamp = t
		}
	}

	// Status is either a plain string or an object holding its own
	// Status/StatusDateTime/StatusLocation fields.
	for _, key := range []string{"Status", "status"} {
		switch v := fields[key].(type) {
		case string:
			if payload.RawStatus == "" {
				payload.RawStatus = v
			}
		case map[string]interface{}:
			payload.RawStatus = stringField(v, statusKeys)
			if loc := stringField(v, locationKeys); loc != "" {
				payload.Location = loc
			}
			if rawTime := stringField(v, timeKeys); rawTime != "" {
				if t, ok := parseEventTime(rawTime); ok {
					payload.Timestamp = t
				}
			}
		}
		if payload.RawStatus != "" {
			break
		}
	}
	if payload.RawStatus == "" {
		payload.RawStatus = stringField(fields, statusKeys)
	}

	if payload.AWB == "" {
		return nil, ErrUnparseablePayload
	}
	return payload, nil
}
