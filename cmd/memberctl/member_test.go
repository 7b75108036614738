package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	memberhub "github.com/memberhub/go-memberhub"
)

func TestMergeUpdateInputKeepsUnsetFields(t *testing.T) {
	current := memberhub.Member{
		Name:        "Alice Walker",
		Email:       "alice@example.com",
		PhoneNumber: "9876543210",
		Role:        memberhub.RoleAdmin,
	}
	flags := memberhub.MemberUpdateRequest{Name: "Alice W"}

	changed := func(name string) bool { return name == "name" }

	got := mergeUpdateInput(current, flags, changed)
	assert.Equal(t, "Alice W", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "9876543210", got.PhoneNumber)
	assert.Equal(t, memberhub.RoleAdmin, got.Role, "an unset role flag never rewrites the role")
}

func TestMergeUpdateInputAppliesSetFields(t *testing.T) {
	current := memberhub.Member{
		Name:        "Alice Walker",
		Email:       "alice@example.com",
		PhoneNumber: "9876543210",
		Role:        memberhub.RoleAdmin,
	}
	flags := memberhub.MemberUpdateRequest{
		Name:        "Renamed",
		Email:       "new@example.com",
		PhoneNumber: "9123456780",
		Role:        memberhub.RoleUser,
	}

	changed := func(string) bool { return true }

	got := mergeUpdateInput(current, flags, changed)
	assert.Equal(t, flags, got)
}
