package feeds

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
)

const DefaultLanguage = "fr"

// ServiceStatus is the decoded service status (etat service) document. Alerts
// are kept raw so that one malformed alert does not reject the others.
type ServiceStatus struct {
	Header json.RawMessage `json:"header"`
	Alerts json.RawMessage `json:"alerts"`
}

type AlertEntity struct {
	Cause            AlertCause        `json:"cause"`
	Effect           AlertEffect       `json:"effect"`
	ActivePeriod     ActivePeriod      `json:"active_periods"`
	InformedEntities []InformedEntity  `json:"informed_entities"`
	DescriptionTexts []DescriptionText `json:"description_texts"`
}

type InformedEntity struct {
	RouteShortName string      `json:"route_short_name"`
	DirectionID    DirectionID `json:"direction_id"`
}

type DescriptionText struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// ActivePeriod bounds are epoch seconds; nil means open ended.
type ActivePeriod struct {
	Start *int64
	End   *int64
}

type AlertOptions struct {
	TargetLanguage string
	RetainContext  bool
}

// DecodeServiceStatus parses the service status JSON document.
func DecodeServiceStatus(data []byte) (*ServiceStatus, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Feed: "service-status", Err: errEmptyPayload}
	}
	if trimmed[0] != '{' {
		return nil, &DecodeError{Feed: "service-status", Err: errors.New("document is not a JSON object")}
	}

	var status ServiceStatus
	if err := json.Unmarshal(trimmed, &status); err != nil {
		return nil, &DecodeError{Feed: "service-status", Err: err}
	}

	return &status, nil
}

// FlattenAlerts explodes every alert into informed entity x description text
// rows, keeping only texts whose language tag equals the target exactly.
//
// Only a missing or non-list alerts field fails. An alert that cannot be read,
// has no informed entity, or has no text in the target language yields no rows.
func FlattenAlerts(status *ServiceStatus, opts AlertOptions) ([]AlertRecord, error) {
	raw := bytes.TrimSpace(status.Alerts)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &MissingFieldError{Field: "alerts"}
	}

	var rawAlerts []json.RawMessage
	if err := json.Unmarshal(raw, &rawAlerts); err != nil {
		return nil, &MissingFieldError{Field: "alerts"}
	}

	records := []AlertRecord{}

	for i, rawAlert := range rawAlerts {
		var alert AlertEntity
		if err := json.Unmarshal(rawAlert, &alert); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping unreadable alert")
			continue
		}

		records = append(records, explodeAlert(&alert, opts)...)
	}

	return records, nil
}

// FlattenFeedAlerts applies the FlattenAlerts join to the alert entities of a GTFS-RT feed.
func FlattenFeedAlerts(feed *FeedMessage, opts AlertOptions) ([]AlertRecord, error) {
	records := []AlertRecord{}

	for _, entity := range feed.Entities {
		if entity.Kind != EntityKindAlert {
			continue
		}
		if entity.Alert == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "alert"}
		}

		records = append(records, explodeAlert(entity.Alert, opts)...)
	}

	return records, nil
}

func explodeAlert(alert *AlertEntity, opts AlertOptions) []AlertRecord {
	language := opts.TargetLanguage
	if language == "" {
		language = DefaultLanguage
	}

	var texts []string
	for _, description := range alert.DescriptionTexts {
		if description.Language == language {
			texts = append(texts, description.Text)
		}
	}

	var records []AlertRecord
	for _, informed := range alert.InformedEntities {
		for _, text := range texts {
			record := AlertRecord{
				RouteShortName: informed.RouteShortName,
				DirectionID:    string(informed.DirectionID),
				Text:           text,
			}

			if opts.RetainContext {
				record.Cause = alert.Cause.String()
				record.Effect = alert.Effect.String()
				record.ActiveStart = alert.ActivePeriod.Start
				record.ActiveEnd = alert.ActivePeriod.End
			}

			records = append(records, record)
		}
	}

	return records
}

// AlertCause reads a GTFS-RT cause name; names outside the enum become UNKNOWN_CAUSE.
type AlertCause gtfs.Alert_Cause

func (c AlertCause) String() string {
	return gtfs.Alert_Cause(c).String()
}

func (c *AlertCause) UnmarshalJSON(data []byte) error {
	name, err := enumName(data)
	if err != nil {
		return err
	}
	if name == "" {
		*c = AlertCause(gtfs.Alert_UNKNOWN_CAUSE)
		return nil
	}

	value, ok := gtfs.Alert_Cause_value[name]
	if !ok {
		log.Warn().Str("cause", name).Msg("Unrecognised alert cause, using UNKNOWN_CAUSE")
		value = int32(gtfs.Alert_UNKNOWN_CAUSE)
	}
	*c = AlertCause(value)

	return nil
}

// AlertEffect reads a GTFS-RT effect name; names outside the enum become UNKNOWN_EFFECT.
type AlertEffect gtfs.Alert_Effect

func (e AlertEffect) String() string {
	return gtfs.Alert_Effect(e).String()
}

func (e *AlertEffect) UnmarshalJSON(data []byte) error {
	name, err := enumName(data)
	if err != nil {
		return err
	}
	if name == "" {
		*e = AlertEffect(gtfs.Alert_UNKNOWN_EFFECT)
		return nil
	}

	value, ok := gtfs.Alert_Effect_value[name]
	if !ok {
		log.Warn().Str("effect", name).Msg("Unrecognised alert effect, using UNKNOWN_EFFECT")
		value = int32(gtfs.Alert_UNKNOWN_EFFECT)
	}
	*e = AlertEffect(value)

	return nil
}

func enumName(data []byte) (string, error) {
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return "", err
	}

	return name, nil
}

// DirectionID is stored as a string; feeds send it either as a number or a string.
type DirectionID string

func (d *DirectionID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*d = DirectionID(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*d = DirectionID(number.String())

	return nil
}

// UnmarshalJSON reads either a single {start, end} object or a list of them,
// in which case the first one is used.
func (p *ActivePeriod) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = ActivePeriod{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var periods []json.RawMessage
		if err := json.Unmarshal(trimmed, &periods); err != nil {
			return err
		}
		if len(periods) == 0 {
			*p = ActivePeriod{}
			return nil
		}
		trimmed = periods[0]
	}

	var bounds struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(trimmed, &bounds); err != nil {
		return err
	}

	start, err := parseEpoch(bounds.Start)
	if err != nil {
		return fmt.Errorf("active period start: %w", err)
	}
	end, err := parseEpoch(bounds.End)
	if err != nil {
		return fmt.Errorf("active period end: %w", err)
	}

	p.Start = start
	p.End = end

	return nil
}

func parseEpoch(data json.RawMessage) (*int64, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var text string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, err
		}
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(data)
	}

	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, err
	}

	return &value, nil
}
