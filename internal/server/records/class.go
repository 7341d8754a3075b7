package records

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/avelichka/lectern/internal/common"
)

// ResourceClass is the closed enumeration of record kinds eligible for
// reconciliation. The allow-list is exactly the set of declared constants:
// parsing anything else fails, and each class carries its own payload
// validation, so dispatch is exhaustive rather than a runtime string
// lookup into an open table.
type ResourceClass string

const (
	ClassNote      ResourceClass = "note"
	ClassHighlight ResourceClass = "highlight"
	ClassBookmark  ResourceClass = "bookmark"
)

// SyncableClasses lists every class the server reconciles, in a stable
// order.
func SyncableClasses() []ResourceClass {
	return []ResourceClass{ClassNote, ClassHighlight, ClassBookmark}
}

// ParseClass maps a wire string to a ResourceClass. Unknown classes return
// common.ErrNotSyncable: this check is server-authoritative and
// independent of whatever the client allow-listed.
func ParseClass(s string) (ResourceClass, error) {
	switch c := ResourceClass(s); c {
	case ClassNote, ClassHighlight, ClassBookmark:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrNotSyncable, s)
	}
}

// notePayload is a user note attached to a scripture reference.
type notePayload struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Body      string `json:"body"`
}

// highlightPayload marks a verse range with a color.
type highlightPayload struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Color     string `json:"color"`
}

// bookmarkPayload pins a reading position.
type bookmarkPayload struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// deleteKey is the id-only shape a delete payload has to carry.
type deleteKey struct {
	ID string `json:"id"`
}

// RecordID extracts the record id from a payload without enforcing the
// full class schema. Deletes are keyed by id alone; any other fields the
// payload happens to carry are ignored.
func (c ResourceClass) RecordID(raw json.RawMessage) (string, error) {
	var k deleteKey
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidPayload, err)
	}
	if k.ID == "" {
		return "", fmt.Errorf("%w: %s delete requires id", common.ErrInvalidPayload, string(c))
	}
	return k.ID, nil
}

// ValidatePayload checks the class-specific shape of a record payload and
// returns its record id.
func (c ResourceClass) ValidatePayload(raw json.RawMessage) (string, error) {
	switch c {
	case ClassNote:
		var p notePayload
		if err := strictUnmarshal(raw, &p); err != nil {
			return "", err
		}
		if p.ID == "" || p.Reference == "" {
			return "", fmt.Errorf("%w: note requires id and reference", common.ErrInvalidPayload)
		}
		return p.ID, nil
	case ClassHighlight:
		var p highlightPayload
		if err := strictUnmarshal(raw, &p); err != nil {
			return "", err
		}
		if p.ID == "" || p.Reference == "" || p.Color == "" {
			return "", fmt.Errorf("%w: highlight requires id, reference and color", common.ErrInvalidPayload)
		}
		return p.ID, nil
	case ClassBookmark:
		var p bookmarkPayload
		if err := strictUnmarshal(raw, &p); err != nil {
			return "", err
		}
		if p.ID == "" || p.Reference == "" {
			return "", fmt.Errorf("%w: bookmark requires id and reference", common.ErrInvalidPayload)
		}
		return p.ID, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrNotSyncable, string(c))
	}
}

// strictUnmarshal rejects fields the class schema does not declare, so a
// client sending data under a misspelled key hears about it instead of
// the data landing as a stray field the schema never reads.
func strictUnmarshal(raw json.RawMessage, target any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidPayload, err)
	}
	return nil
}
