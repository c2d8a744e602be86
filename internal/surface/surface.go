// Package surface defines the capability interface the landing page editor
// needs from a rendered document, independent of how it is rendered.
package surface

// Attributes carried by tagged elements of a layout template.
const (
	FieldAttr = "data-field"
	ImageAttr = "data-image"
	// EditingAttr marks elements with live edit affordances.
	EditingAttr = "data-editing"
)

// EventType is the kind of edit event a surface emits.
type EventType string

const (
	EventInput EventType = "input"
	EventKey   EventType = "key"
	EventBlur  EventType = "blur"
)

// Event is one user interaction with a tagged text element.
type Event struct {
	Type     EventType `json:"type"`
	FieldID  string    `json:"field_id"`
	Value    string    `json:"value,omitempty"`    // element content after an input event
	Key      string    `json:"key,omitempty"`      // "Enter", "Escape", ... for key events
	Modifier bool      `json:"modifier,omitempty"` // shift/ctrl/alt/meta held
}

// Handler receives edit events. Returning true consumes the event, so the
// surface must skip its default behaviour (e.g. inserting a newline).
type Handler func(ev Event) bool

// Surface is a rendered document whose tagged elements can be read,
// written and made editable.
type Surface interface {
	// Fields lists the text field identifiers present, in document order.
	Fields() []string
	// Images lists the image tags present, in document order.
	Images() []string

	// ReadField returns the raw content of a text element.
	ReadField(id string) (string, bool)
	// WriteText sets plain text as the content of every element tagged id.
	WriteText(id, text string) bool

	// ReadImage returns the background image URL of an image element.
	ReadImage(tag string) (string, bool)
	// WriteImage sets the background image URL of every element tagged tag.
	WriteImage(tag, url string) bool

	// SetEditable toggles direct text editing and its transient markers.
	SetEditable(id string, editable bool)
	// Blur moves edit focus out of a field.
	Blur(id string)

	// Subscribe registers an edit handler and returns its cancel func.
	Subscribe(h Handler) (cancel func())
}
