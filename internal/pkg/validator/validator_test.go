package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Operation string   `json:"operation" validate:"required,oneof=assign delete"`
	LeadIDs   []string `json:"lead_ids" validate:"required,min=1,dive,required"`
	Note      string
}

func TestValidate_UsesJSONNames(t *testing.T) {
	errs := Validate(&sample{Operation: "archive"})

	assert.Equal(t, map[string]string{"operation": "oneof", "lead_ids": "required"}, errs)
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(&sample{Operation: "delete", LeadIDs: []string{"id1"}}))
}

func TestValidate_DiveReportsElement(t *testing.T) {
	errs := Validate(&sample{Operation: "delete", LeadIDs: []string{"id1", ""}})

	assert.Equal(t, map[string]string{"lead_ids[1]": "required"}, errs)
}

func TestValidate_NonStruct(t *testing.T) {
	errs := Validate("not a struct")

	assert.Contains(t, errs, "_")
}
