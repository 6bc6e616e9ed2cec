package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func ordersElement() Element {
	return Element{
		ID:   "e1",
		Type: "table",
		Name: "orders",
		X:    ptr(100),
		Y:    ptr(100),
		Fields: []Field{
			{ID: "f1", Name: "id", Type: "integer", IsPrimary: true},
			{ID: "f2", Name: "total", Type: "float"},
		},
	}
}

func TestValidateAcceptsWellFormedSnapshot(t *testing.T) {
	req := SyncRequest{
		Elements: []Element{ordersElement()},
	}
	assert.NoError(t, Validate(req))
	assert.NoError(t, CheckSnapshot(req.Elements, req.Connections))
}

func TestValidateRejectsBadFieldType(t *testing.T) {
	el := ordersElement()
	el.Fields[1].Type = "money"

	assert.Error(t, Validate(SyncRequest{Elements: []Element{el}}))
}

func TestValidateRejectsBadRelation(t *testing.T) {
	req := SyncRequest{
		Elements:    []Element{ordersElement()},
		Connections: []Connection{{ID: "c1", From: "e1", To: "e1", Type: "some-to-some"}},
	}
	assert.Error(t, Validate(req))
}

func TestValidateRequiresIdentifiers(t *testing.T) {
	el := ordersElement()
	el.ID = ""
	assert.Error(t, Validate(SyncRequest{Elements: []Element{el}}))
}

func TestValidateRegister(t *testing.T) {
	assert.NoError(t, Validate(RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"}))
	assert.Error(t, Validate(RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret1"}))
	assert.Error(t, Validate(RegisterRequest{Username: "alice", Email: "a@x.com", Password: "123"}))
}

func TestCheckSnapshotRules(t *testing.T) {
	twoPrimaries := ordersElement()
	twoPrimaries.Fields[1].IsPrimary = true

	dupField := ordersElement()
	dupField.Fields[1].ID = "f1"

	other := ordersElement()
	other.ID = "e2"

	cases := []struct {
		name        string
		elements    []Element
		connections []Connection
	}{
		{"duplicate element", []Element{ordersElement(), ordersElement()}, nil},
		{"two primary keys", []Element{twoPrimaries}, nil},
		{"duplicate field", []Element{dupField}, nil},
		{"dangling connection", []Element{ordersElement()}, []Connection{{ID: "c1", From: "e1", To: "gone"}}},
		{"unknown field", []Element{ordersElement(), other}, []Connection{{ID: "c1", From: "e1", To: "e2", ToField: "nope"}}},
		{"duplicate connection", []Element{ordersElement(), other}, []Connection{
			{ID: "c1", From: "e1", To: "e2"},
			{ID: "c1", From: "e2", To: "e1"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, CheckSnapshot(tc.elements, tc.connections))
		})
	}
}

func TestCheckSnapshotAllowsSelfLoopAndParallelConnections(t *testing.T) {
	other := ordersElement()
	other.ID = "e2"

	err := CheckSnapshot([]Element{ordersElement(), other}, []Connection{
		{ID: "c1", From: "e1", To: "e1"},
		{ID: "c2", From: "e1", To: "e2", FromField: "f1", ToField: "f1"},
		{ID: "c3", From: "e1", To: "e2"},
	})
	assert.NoError(t, err)
}
