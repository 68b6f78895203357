package config

import (
	"testing"
	"testing/fstest"
)

func TestLoadAttributeSchemaValid(t *testing.T) {
	data := `{"attribute":[
		{"key":"eye_color","mode":"one_level","id":1,"order_number":1,"values":[1,2,3]},
		{"key":"interests","mode":"number_list","id":2,"order_number":2,"values":[1]},
		{"key":"body_type","mode":"bitflag","id":3,"order_number":3,"values":[1,2,4,8]}
	]}`
	fsys := fstest.MapFS{"attrs.json": &fstest.MapFile{Data: []byte(data)}}

	schema, err := LoadAttributeSchema(fsys, "attrs.json")
	if err != nil {
		t.Fatalf("LoadAttributeSchema: %v", err)
	}
	if _, ok := schema.Lookup(1); !ok {
		t.Errorf("expected attribute id 1 to be present")
	}
	if _, ok := schema.Lookup(99); ok {
		t.Errorf("expected attribute id 99 to be absent")
	}
}

func TestLoadAttributeSchemaRejectsNonContiguousIDs(t *testing.T) {
	data := `{"attribute":[
		{"key":"a","mode":"one_level","id":1,"order_number":1,"values":[1]},
		{"key":"b","mode":"one_level","id":3,"order_number":2,"values":[1]}
	]}`
	fsys := fstest.MapFS{"attrs.json": &fstest.MapFile{Data: []byte(data)}}

	if _, err := LoadAttributeSchema(fsys, "attrs.json"); err == nil {
		t.Fatalf("expected error for non-contiguous attribute ids")
	}
}

func TestLoadAttributeSchemaRejectsDuplicateKey(t *testing.T) {
	data := `{"attribute":[
		{"key":"a","mode":"one_level","id":1,"order_number":1,"values":[1]},
		{"key":"a","mode":"one_level","id":2,"order_number":2,"values":[1]}
	]}`
	fsys := fstest.MapFS{"attrs.json": &fstest.MapFile{Data: []byte(data)}}

	if _, err := LoadAttributeSchema(fsys, "attrs.json"); err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestLoadAttributeSchemaRejectsNonPowerOfTwoBitflag(t *testing.T) {
	data := `{"attribute":[
		{"key":"a","mode":"bitflag","id":1,"order_number":1,"values":[3]}
	]}`
	fsys := fstest.MapFS{"attrs.json": &fstest.MapFile{Data: []byte(data)}}

	if _, err := LoadAttributeSchema(fsys, "attrs.json"); err == nil {
		t.Fatalf("expected error for non-power-of-two bitflag value")
	}
}

func TestLoadAttributeSchemaRejectsNonContiguousValueIDs(t *testing.T) {
	data := `{"attribute":[
		{"key":"a","mode":"one_level","id":1,"order_number":1,"values":[1,3]}
	]}`
	fsys := fstest.MapFS{"attrs.json": &fstest.MapFile{Data: []byte(data)}}

	if _, err := LoadAttributeSchema(fsys, "attrs.json"); err == nil {
		t.Fatalf("expected error for non-contiguous value ids")
	}
}
