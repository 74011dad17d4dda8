package location

import (
	"strings"

	"github.com/georgemunganga/librarian/internal/validation"
)

// Draft is the form state of a location being created. LockParent and
// LockType are set when the form was opened from a tree node and the
// parent or type must not be changed.
type Draft struct {
	ParentID    string `json:"parent_id"`
	Type        Type   `json:"type"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	LockParent  bool   `json:"lock_parent"`
	LockType    bool   `json:"lock_type"`
}

// NewDraft opens a draft for a location of type t under parentID. Either may
// be empty when the user picks them in the form.
func NewDraft(t Type, parentID string) Draft {
	return Draft{
		ParentID:   parentID,
		Type:       t,
		LockParent: parentID != "",
		LockType:   t != "",
	}
}

// CreateRequest is the payload of POST /admin/locations.
type CreateRequest struct {
	ParentID    string  `json:"parent_id,omitempty"`
	Type        Type    `json:"type"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate rejects a draft without a name, with an unknown type, or missing
// the parent its type requires.
func (d Draft) Validate() error {
	if err := validation.Required("name", d.Name); err != nil {
		return err
	}
	if err := validation.Required("type", string(d.Type)); err != nil {
		return err
	}
	t, err := ParseType(strings.TrimSpace(string(d.Type)))
	if err != nil {
		return &validation.FieldError{Field: "type", Message: err.Error()}
	}
	if parent, ok := t.Parent(); ok && d.ParentID == "" {
		return &validation.FieldError{Field: "parent_id", Message: "a " + string(parent) + " must be selected"}
	}
	return nil
}

// Request builds the create payload. Only buildings carry an address.
func (d Draft) Request() CreateRequest {
	t := Type(strings.TrimSpace(string(d.Type)))
	req := CreateRequest{
		ParentID:    d.ParentID,
		Type:        t,
		Name:        strings.TrimSpace(d.Name),
		Description: validation.OptionalString(d.Description),
	}
	if t == Building {
		req.Address = validation.OptionalString(d.Address)
	}
	return req
}
